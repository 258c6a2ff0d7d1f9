package modelbind_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formbind/pkg/modelbind"
	"github.com/dmitrymomot/formbind/pkg/modelstate"
	"github.com/dmitrymomot/formbind/pkg/validator"
)

type registration struct {
	Name  string `json:"name" validate:"required,min=3"`
	Email string `json:"email" validate:"email" vd:"len($)>5"`
	Code  string `json:"code" vd:"$=='ok'"`
}

type numberRange struct {
	From int `json:"from" validate:"min=0"`
	To   int `json:"to"`
}

func (r *numberRange) Validate() error {
	if r.To < r.From {
		return validator.ValidationErrors{{
			Field:          "To",
			Message:        "must not be before from",
			TranslationKey: "range.order",
		}}
	}
	return nil
}

type badRules struct {
	Name string `json:"name" validate:"nonsense"`
}

type wrapsBadRules struct {
	Title string   `json:"title"`
	Inner badRules `json:"inner"`
}

func TestAggregator_PropertyValidators(t *testing.T) {
	t.Parallel()

	mb := modelbind.New()

	t.Run("first finding per field wins", func(t *testing.T) {
		t.Parallel()

		var got registration
		state, err := mb.Bind(context.Background(), values(t, "email=ab&code=ok"), &got)
		require.NoError(t, err)

		assert.Equal(t, []string{"field is required"}, state.Errors("name"))
		assert.Equal(t, []string{"must be a valid email address"}, state.Errors("email"))
		assert.Empty(t, state.Errors("code"))
		assert.Equal(t, 2, state.ErrorCount())
	})

	t.Run("expression without message", func(t *testing.T) {
		t.Parallel()

		var got registration
		state, err := mb.Bind(context.Background(), values(t, "name=alice&email=alice@example.com&code=nope"), &got)
		require.NoError(t, err)

		assert.Equal(t, []string{"The value of 'code' is invalid."}, state.Errors("code"))
		assert.Equal(t, 1, state.ErrorCount())
		assert.Equal(t, modelstate.Valid, state.FieldValidationState("name"))
		assert.Equal(t, modelstate.Valid, state.FieldValidationState("email"))
	})

	t.Run("all valid", func(t *testing.T) {
		t.Parallel()

		var got registration
		state, err := mb.Bind(context.Background(), values(t, "name=alice&email=alice@example.com&code=ok"), &got)
		require.NoError(t, err)
		assert.True(t, state.IsValid())
	})

	t.Run("malformed rules reject the model", func(t *testing.T) {
		t.Parallel()

		var got badRules
		_, err := mb.Bind(context.Background(), values(t, "name=x"), &got)
		require.ErrorIs(t, err, validator.ErrUnknownRule)
		assert.Contains(t, err.Error(), "badRules.Name")
		assert.Empty(t, got.Name)
	})
}

func TestAggregator_ObjectValidators(t *testing.T) {
	t.Parallel()

	mb := modelbind.New()

	t.Run("runs when properties are valid", func(t *testing.T) {
		t.Parallel()

		var got numberRange
		state, err := mb.Bind(context.Background(), values(t, "from=5&to=1"), &got)
		require.NoError(t, err)

		assert.Equal(t, []string{"must not be before from"}, state.Errors("to"))
		assert.Equal(t, 1, state.ErrorCount())
	})

	t.Run("skipped after a property finding", func(t *testing.T) {
		t.Parallel()

		var got numberRange
		state, err := mb.Bind(context.Background(), values(t, "from=-1&to=-5"), &got)
		require.NoError(t, err)

		assert.Len(t, state.Errors("from"), 1)
		assert.Empty(t, state.Errors("to"))
	})

	t.Run("skipped after a binding failure", func(t *testing.T) {
		t.Parallel()

		var got numberRange
		state, err := mb.Bind(context.Background(), values(t, "from=5&to=x"), &got)
		require.NoError(t, err)

		assert.Equal(t, []string{"The value 'x' is not valid for to."}, state.Errors("to"))
	})
}

func TestAggregator_RegisteredValidators(t *testing.T) {
	t.Parallel()

	mb := modelbind.New(modelbind.WithObjectValidator(func(_ context.Context, model any) error {
		form, ok := model.(*DemoFormModel)
		if !ok {
			return nil
		}
		switch form.TextBox {
		case "taken":
			ve := modelstate.NewValidationError()
			ve.Add("foo", "already taken")
			return ve
		case "boom":
			return errors.New("boom")
		}
		return nil
	}))

	t.Run("field error", func(t *testing.T) {
		t.Parallel()

		var got DemoFormModel
		state, err := mb.Bind(context.Background(), values(t, "foo=taken"), &got)
		require.NoError(t, err)
		assert.Equal(t, []string{"already taken"}, state.Errors("foo"))
	})

	t.Run("model error", func(t *testing.T) {
		t.Parallel()

		var got DemoFormModel
		state, err := mb.Bind(context.Background(), values(t, "foo=boom"), &got)
		require.NoError(t, err)
		assert.Equal(t, []string{"boom"}, state.Errors(""))
	})

	t.Run("nested model error keyed by prefix", func(t *testing.T) {
		t.Parallel()

		var got DemoFormModel
		state, err := mb.Bind(context.Background(), values(t, "form.foo=boom"), &got, modelbind.Prefix("form"))
		require.NoError(t, err)
		assert.Equal(t, []string{"boom"}, state.Errors("form"))
	})
}

func TestFactory_RejectsUnknownRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		model reflect.Type
	}{
		{"direct property", reflect.TypeOf(badRules{})},
		{"nested model", reflect.TypeOf(wrapsBadRules{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := modelbind.NewFactory(nil)
			for range 2 {
				_, _, err := f.BinderFor(tt.model)
				require.ErrorIs(t, err, validator.ErrUnknownRule)
			}
		})
	}
}
