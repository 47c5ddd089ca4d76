package capability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/studiofit/gym-assistant-go/internal/errors"
	"github.com/studiofit/gym-assistant-go/internal/model"
)

func testRegistry(t *testing.T, handler Handler) *Registry {
	t.Helper()
	r := NewRegistry()
	r.Register(Capability{
		Name:        "book_session",
		Description: "Book a class session",
		Params: []Param{
			{Name: "session", Description: "Class name or session ID", Required: true},
			{Name: "time", Description: "Start time", Required: false},
		},
		Handler: handler,
	})
	return r
}

func TestRegistry_Definitions(t *testing.T) {
	r := testRegistry(t, nil)
	r.Register(Capability{Name: "get_schedule", Description: "List sessions"})

	defs := r.Definitions()
	require.Len(t, defs, 2)

	assert.Equal(t, "book_session", defs[0].Function.Name)
	assert.Equal(t, "get_schedule", defs[1].Function.Name)

	params := defs[0].Function.Parameters
	assert.Equal(t, "object", params["type"])
	properties, ok := params["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, properties, "session")
	assert.Contains(t, properties, "time")
	assert.Equal(t, []string{"session"}, params["required"])
}

func TestRegistry_Dispatch(t *testing.T) {
	member := &model.Member{ID: "m1", Phone: "+4915112345678"}

	t.Run("invokes handler with decoded arguments", func(t *testing.T) {
		var gotArgs map[string]string
		r := testRegistry(t, func(ctx context.Context, m *model.Member, args map[string]string) (any, error) {
			assert.Equal(t, member, m)
			gotArgs = args
			return "ok", nil
		})

		result, err := r.Dispatch(context.Background(), member, "book_session", `{"session":"Yoga","time":"18:30"}`)

		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, map[string]string{"session": "Yoga", "time": "18:30"}, gotArgs)
	})

	t.Run("rejects unknown capability", func(t *testing.T) {
		r := testRegistry(t, nil)

		_, err := r.Dispatch(context.Background(), member, "delete_everything", `{}`)

		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnknownCapability))
	})

	t.Run("rejects missing required parameter", func(t *testing.T) {
		r := testRegistry(t, nil)

		_, err := r.Dispatch(context.Background(), member, "book_session", `{"time":"18:30"}`)

		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArguments))
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, map[string]string{"parameter": "session"}, appErr.Details)
	})

	t.Run("rejects empty required parameter", func(t *testing.T) {
		r := testRegistry(t, nil)

		_, err := r.Dispatch(context.Background(), member, "book_session", `{"session":""}`)

		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArguments))
	})

	t.Run("rejects undeclared parameter", func(t *testing.T) {
		r := testRegistry(t, nil)

		_, err := r.Dispatch(context.Background(), member, "book_session", `{"session":"Yoga","member_id":"someone-else"}`)

		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArguments))
	})

	t.Run("rejects malformed arguments payload", func(t *testing.T) {
		r := testRegistry(t, nil)

		_, err := r.Dispatch(context.Background(), member, "book_session", `["Yoga"]`)

		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArguments))
	})

	t.Run("coerces scalar values to strings", func(t *testing.T) {
		var gotArgs map[string]string
		r := testRegistry(t, func(ctx context.Context, m *model.Member, args map[string]string) (any, error) {
			gotArgs = args
			return nil, nil
		})

		_, err := r.Dispatch(context.Background(), member, "book_session", `{"session":42}`)

		require.NoError(t, err)
		assert.Equal(t, "42", gotArgs["session"])
	})

	t.Run("empty arguments payload defaults to no parameters", func(t *testing.T) {
		r := testRegistry(t, nil)

		_, err := r.Dispatch(context.Background(), member, "book_session", "")

		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArguments))
	})

	t.Run("handler errors pass through", func(t *testing.T) {
		r := testRegistry(t, func(ctx context.Context, m *model.Member, args map[string]string) (any, error) {
			return nil, apperrors.NotFound("session")
		})

		_, err := r.Dispatch(context.Background(), member, "book_session", `{"session":"Yoga"}`)

		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
	})
}
