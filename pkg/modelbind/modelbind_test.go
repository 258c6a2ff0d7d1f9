package modelbind_test

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formbind/pkg/modelbind"
	"github.com/dmitrymomot/formbind/pkg/modelstate"
	"github.com/dmitrymomot/formbind/pkg/valueprovider"
)

type DemoFormModel struct {
	TextBox      string `json:"foo"`
	DropdownList int    `json:"bar"`
	CheckBoxList []int  `json:"baz"`
}

type untagged struct {
	Name  string
	Count int
}

type child struct {
	Name string `json:"name"`
}

type parent struct {
	Title   string `json:"title"`
	Child   *child `json:"child"`
	Address child  `json:"address"`
}

type profile struct {
	Nick string `json:"nick" bind:"required"`
	Age  int    `json:"age"`
}

type signup struct {
	Email   string   `json:"email" bind:"required"`
	Count   int      `json:"count" bind:"required"`
	Profile *profile `json:"profile"`
}

type item struct {
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}

type order struct {
	Items []item    `json:"items"`
	Tags  [2]string `json:"tags"`
}

type category struct {
	Name   string    `json:"name"`
	Parent *category `json:"parent"`
}

type guarded struct {
	ID       int    `json:"id" bind:"never"`
	Secret   string `json:"-"`
	Name     string `json:"name"`
	Internal string `json:"internal" bind:"readonly"`
}

func values(t *testing.T, query string) *valueprovider.Values {
	t.Helper()
	v, err := url.ParseQuery(query)
	require.NoError(t, err)
	return valueprovider.NewValues(v)
}

func TestModelBinder_Bind_DemoForm(t *testing.T) {
	t.Parallel()

	mb := modelbind.New()

	t.Run("binds by alias", func(t *testing.T) {
		t.Parallel()

		var form DemoFormModel
		state, err := mb.Bind(context.Background(), values(t, "foo=hello&bar=3&baz=1&baz=2"), &form)
		require.NoError(t, err)

		assert.True(t, state.IsValid())
		assert.Equal(t, 0, state.ErrorCount())
		want := DemoFormModel{TextBox: "hello", DropdownList: 3, CheckBoxList: []int{1, 2}}
		if diff := cmp.Diff(want, form); diff != "" {
			t.Errorf("bound model mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("conversion failure is recorded once", func(t *testing.T) {
		t.Parallel()

		var form DemoFormModel
		state, err := mb.Bind(context.Background(), values(t, "bar=notanumber"), &form)
		require.NoError(t, err)

		assert.Equal(t, 1, state.ErrorCount())
		assert.Equal(t, []string{"The value 'notanumber' is not valid for bar."}, state.Errors("bar"))
		assert.Equal(t, modelstate.Unvalidated, state.FieldValidationState("foo"))
		assert.Empty(t, state.Errors("baz"))
		if diff := cmp.Diff(DemoFormModel{}, form); diff != "" {
			t.Errorf("model should stay at defaults (-want +got):\n%s", diff)
		}
	})

	t.Run("declared names do not bind", func(t *testing.T) {
		t.Parallel()

		var form DemoFormModel
		state, err := mb.Bind(context.Background(), values(t, "TextBox=hello&DropdownList=3&CheckBoxList=1"), &form)
		require.NoError(t, err)

		assert.True(t, state.IsValid())
		assert.Equal(t, DemoFormModel{}, form)
	})

	t.Run("repeated value with invalid element", func(t *testing.T) {
		t.Parallel()

		var form DemoFormModel
		state, err := mb.Bind(context.Background(), values(t, "baz=1&baz=x"), &form)
		require.NoError(t, err)

		assert.Equal(t, []string{"The value 'x' is not valid for baz."}, state.Errors("baz"))
		assert.Nil(t, form.CheckBoxList)
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		in := url.Values{"foo": {"héllo wörld"}, "bar": {"-42"}, "baz": {"7", "0", "9"}}
		var form DemoFormModel
		state, err := mb.Bind(context.Background(), valueprovider.NewValues(in), &form)
		require.NoError(t, err)
		require.True(t, state.IsValid())

		out := url.Values{"foo": {form.TextBox}, "bar": {strconv.Itoa(form.DropdownList)}}
		for _, n := range form.CheckBoxList {
			out.Add("baz", strconv.Itoa(n))
		}
		assert.Equal(t, in.Encode(), out.Encode())
	})
}

func TestModelBinder_Bind_Untagged(t *testing.T) {
	t.Parallel()

	var m untagged
	state, err := modelbind.New().Bind(context.Background(), values(t, "Name=x&Count=2&name=y"), &m)
	require.NoError(t, err)

	assert.True(t, state.IsValid())
	assert.Equal(t, untagged{Name: "x", Count: 2}, m)
}

func TestModelBinder_Bind_Nested(t *testing.T) {
	t.Parallel()

	mb := modelbind.New()

	tests := []struct {
		name  string
		query string
		want  parent
	}{
		{
			name:  "child without values is not allocated",
			query: "title=x",
			want:  parent{Title: "x"},
		},
		{
			name:  "child bound from dotted names",
			query: "title=x&child.name=bob",
			want:  parent{Title: "x", Child: &child{Name: "bob"}},
		},
		{
			name:  "declared child name does not bind",
			query: "Child.Name=bob&child.Name=bob",
			want:  parent{},
		},
		{
			name:  "value-typed child",
			query: "address.name=home",
			want:  parent{Address: child{Name: "home"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got parent
			state, err := mb.Bind(context.Background(), values(t, tt.query), &got)
			require.NoError(t, err)
			assert.True(t, state.IsValid())
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestModelBinder_Bind_ExistingInstance(t *testing.T) {
	t.Parallel()

	got := parent{Title: "keep", Child: &child{Name: "old"}}
	state, err := modelbind.New().Bind(context.Background(), values(t, "child.name=new"), &got)
	require.NoError(t, err)

	assert.True(t, state.IsValid())
	assert.Equal(t, "keep", got.Title)
	assert.Equal(t, "new", got.Child.Name)
}

func TestModelBinder_Bind_Required(t *testing.T) {
	t.Parallel()

	mb := modelbind.New()

	t.Run("missing values", func(t *testing.T) {
		t.Parallel()

		var got signup
		state, err := mb.Bind(context.Background(), values(t, "profile.age=3"), &got)
		require.NoError(t, err)

		assert.Equal(t, 3, state.ErrorCount())
		assert.Equal(t, []string{"A value for the 'email' parameter or property was not provided."}, state.Errors("email"))
		assert.Len(t, state.Errors("count"), 1)
		assert.Equal(t, []string{"A value for the 'nick' parameter or property was not provided."}, state.Errors("profile.nick"))
		require.NotNil(t, got.Profile)
		assert.Equal(t, 3, got.Profile.Age)
	})

	t.Run("conversion failure is not reported twice", func(t *testing.T) {
		t.Parallel()

		var got signup
		state, err := mb.Bind(context.Background(), values(t, "email=a@b.c&count=abc"), &got)
		require.NoError(t, err)

		assert.Equal(t, []string{"The value 'abc' is not valid for count."}, state.Errors("count"))
		assert.Equal(t, 1, state.ErrorCount())
	})

	t.Run("unsubmitted nested required property", func(t *testing.T) {
		t.Parallel()

		var got signup
		state, err := mb.Bind(context.Background(), values(t, "email=a@b.c&count=1"), &got)
		require.NoError(t, err)

		assert.True(t, state.IsValid())
		assert.Nil(t, got.Profile)
	})

	t.Run("required top-level model", func(t *testing.T) {
		t.Parallel()

		var got DemoFormModel
		state, err := mb.Bind(context.Background(), values(t, ""), &got, modelbind.Required())
		require.NoError(t, err)

		assert.Equal(t, []string{"A value for the 'DemoFormModel' parameter or property was not provided."}, state.Errors(""))
	})

	t.Run("required simple target", func(t *testing.T) {
		t.Parallel()

		var got int
		state, err := mb.Bind(context.Background(), values(t, "other=1"), &got, modelbind.Prefix("n"), modelbind.Required())
		require.NoError(t, err)

		assert.Equal(t, 1, state.ErrorCount())
	})
}

func TestModelBinder_Bind_Collections(t *testing.T) {
	t.Parallel()

	var got order
	state, err := modelbind.New().Bind(context.Background(),
		values(t, "items[0].sku=a&items[0].qty=1&items[1].sku=b&items[1].qty=x&items[3].sku=skipped&tags[0]=red&tags[1]=blue&tags[2]=extra"),
		&got,
	)
	require.NoError(t, err)

	require.Len(t, got.Items, 2)
	assert.Equal(t, item{SKU: "a", Qty: 1}, got.Items[0])
	assert.Equal(t, "b", got.Items[1].SKU)
	assert.Equal(t, []string{"The value 'x' is not valid for qty."}, state.Errors("items[1].qty"))
	assert.Equal(t, [2]string{"red", "blue"}, got.Tags)
	assert.Equal(t, 1, state.ErrorCount())
}

func TestModelBinder_Bind_MaxIndex(t *testing.T) {
	t.Parallel()

	var got order
	state, err := modelbind.New(modelbind.WithMaxIndex(1)).Bind(context.Background(),
		values(t, "items[0].sku=a&items[1].sku=b"), &got)
	require.NoError(t, err)

	assert.True(t, state.IsValid())
	assert.Len(t, got.Items, 1)
}

func TestModelBinder_Bind_SelfReferential(t *testing.T) {
	t.Parallel()

	var got category
	state, err := modelbind.New().Bind(context.Background(), values(t, "name=a&parent.name=b&parent.parent.name=c"), &got)
	require.NoError(t, err)

	assert.True(t, state.IsValid())
	want := category{Name: "a", Parent: &category{Name: "b", Parent: &category{Name: "c"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestModelBinder_Bind_BindingBehavior(t *testing.T) {
	t.Parallel()

	got := guarded{Internal: "set by server"}
	state, err := modelbind.New().Bind(context.Background(),
		values(t, "id=5&Secret=s&-=s&name=n&internal=changed"), &got)
	require.NoError(t, err)

	assert.True(t, state.IsValid())
	assert.Equal(t, guarded{Name: "n", Internal: "set by server"}, got)
}

func TestModelBinder_Bind_Options(t *testing.T) {
	t.Parallel()

	mb := modelbind.New()

	t.Run("prefix", func(t *testing.T) {
		t.Parallel()

		var got DemoFormModel
		_, err := mb.Bind(context.Background(), values(t, "form.foo=a&foo=b"), &got, modelbind.Prefix("form"))
		require.NoError(t, err)
		assert.Equal(t, "a", got.TextBox)
	})

	t.Run("prefix falls back to unprefixed names", func(t *testing.T) {
		t.Parallel()

		var got DemoFormModel
		_, err := mb.Bind(context.Background(), values(t, "foo=b"), &got, modelbind.Prefix("form"))
		require.NoError(t, err)
		assert.Equal(t, "b", got.TextBox)
	})

	t.Run("prefixed error keys", func(t *testing.T) {
		t.Parallel()

		var got DemoFormModel
		state, err := mb.Bind(context.Background(), values(t, "form.bar=x"), &got, modelbind.Prefix("form"))
		require.NoError(t, err)
		assert.Len(t, state.Errors("form.bar"), 1)
	})

	t.Run("include filter", func(t *testing.T) {
		t.Parallel()

		var got DemoFormModel
		_, err := mb.Bind(context.Background(), values(t, "foo=a&bar=1"), &got, modelbind.Filter(modelbind.Include("foo")))
		require.NoError(t, err)
		assert.Equal(t, DemoFormModel{TextBox: "a"}, got)
	})

	t.Run("exclude filter", func(t *testing.T) {
		t.Parallel()

		var got DemoFormModel
		_, err := mb.Bind(context.Background(), values(t, "foo=a&bar=1"), &got, modelbind.Filter(modelbind.Exclude("foo")))
		require.NoError(t, err)
		assert.Equal(t, DemoFormModel{DropdownList: 1}, got)
	})
}

func TestModelBinder_Bind_MaxErrors(t *testing.T) {
	t.Parallel()

	var got signup
	state, err := modelbind.New(modelbind.WithMaxErrors(2)).Bind(context.Background(), values(t, "profile.age=1"), &got)
	require.NoError(t, err)

	assert.True(t, state.HasReachedMaxErrors())
	assert.Equal(t, 2, state.ErrorCount())
	assert.Len(t, state.Errors(""), 1)
}

func TestModelBinder_Bind_Errors(t *testing.T) {
	t.Parallel()

	mb := modelbind.New()

	t.Run("non-pointer target", func(t *testing.T) {
		t.Parallel()

		_, err := mb.Bind(context.Background(), values(t, ""), DemoFormModel{})
		require.ErrorIs(t, err, modelbind.ErrInvalidTarget)
	})

	t.Run("nil target", func(t *testing.T) {
		t.Parallel()

		var p *DemoFormModel
		_, err := mb.Bind(context.Background(), values(t, ""), p)
		require.ErrorIs(t, err, modelbind.ErrInvalidTarget)
	})

	t.Run("unsupported target", func(t *testing.T) {
		t.Parallel()

		var m map[string]string
		_, err := mb.Bind(context.Background(), values(t, ""), &m)
		require.ErrorIs(t, err, modelbind.ErrNoBinder)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var got DemoFormModel
		_, err := mb.Bind(ctx, values(t, "foo=a"), &got)
		require.True(t, errors.Is(err, context.Canceled))
	})
}
