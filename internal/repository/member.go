package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/studiofit/gym-assistant-go/internal/database"
	apperrors "github.com/studiofit/gym-assistant-go/internal/errors"
	"github.com/studiofit/gym-assistant-go/internal/model"
)

type MemberRepository interface {
	// Upsert finds the member with the given phone number, creating them on
	// first contact. A non-nil name fills in a missing name but never
	// overwrites an existing one with empty.
	Upsert(ctx context.Context, phone string, name *string) (*model.Member, error)
}

type memberRepository struct {
	db database.DBTX
}

func NewMemberRepository(db database.DBTX) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Upsert(ctx context.Context, phone string, name *string) (*model.Member, error) {
	var member model.Member
	query := `
		INSERT INTO members (id, phone, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (phone) DO UPDATE
		SET name = COALESCE(members.name, EXCLUDED.name)
		RETURNING id, phone, name, email, created_at`
	err := r.db.GetContext(ctx, &member, query, uuid.NewString(), phone, name)
	if err != nil {
		return nil, apperrors.TransientStore(err)
	}
	return &member, nil
}
