package modelbind

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/dmitrymomot/formbind/pkg/logger"
	"github.com/dmitrymomot/formbind/pkg/metadata"
	"github.com/dmitrymomot/formbind/pkg/valueprovider"
)

// BodyBinder is the greedy binder: it consumes the whole request body.
// []byte and string targets receive the raw body; any other type is decoded
// strictly from JSON (unknown fields and trailing data are rejected).
type BodyBinder struct {
	model *metadata.Model
}

// NewBodyBinder returns a greedy binder for m.
func NewBodyBinder(m *metadata.Model) *BodyBinder {
	return &BodyBinder{model: m}
}

// Bind implements Binder.
func (b *BodyBinder) Bind(ctx context.Context, bc Context) (Result, error) {
	state := bc.newState()

	bp, ok := bc.ValueProvider.(valueprovider.BodyProvider)
	if !ok {
		return noResult(state), nil
	}
	data, contentType := bp.Body()
	if len(bytes.TrimSpace(data)) == 0 {
		return noResult(state), nil
	}

	base := b.model.Base
	switch {
	case base.Kind() == reflect.String:
		v := reflect.New(base).Elem()
		v.SetString(string(data))
		return setResult(toType(v, b.model.Type), state), nil
	case base.Kind() == reflect.Slice && base.Elem().Kind() == reflect.Uint8:
		v := reflect.New(base).Elem()
		v.SetBytes(bytes.Clone(data))
		return setResult(toType(v, b.model.Type), state), nil
	}

	v, err := decodeJSON(data, contentType, b.model.Type)
	if err != nil {
		bc.log().DebugContext(ctx, "request body rejected",
			logger.Field(bc.ModelName),
			logger.Error(err),
		)
		state.TryAddError(bc.ModelName, bc.messages().InvalidBody())
		return failedResult(state), nil
	}
	return setResult(v, state), nil
}

func decodeJSON(data []byte, contentType string, t reflect.Type) (reflect.Value, error) {
	if contentType != "" && contentType != "application/json" && !strings.HasSuffix(contentType, "+json") {
		return reflect.Value{}, fmt.Errorf("%w: got %s, expected application/json", ErrInvalidBody, contentType)
	}

	p := reflect.New(t)
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(p.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	var extra json.RawMessage
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		return reflect.Value{}, fmt.Errorf("%w: unexpected data after JSON value", ErrInvalidBody)
	}
	return p.Elem(), nil
}
