package modelbind

import (
	"context"
	"mime/multipart"
	"reflect"

	"github.com/dmitrymomot/formbind/pkg/metadata"
	"github.com/dmitrymomot/formbind/pkg/valueprovider"
)

var fileHeaderPtrType = reflect.TypeOf((*multipart.FileHeader)(nil))

// FileBinder binds uploaded files to *multipart.FileHeader,
// multipart.FileHeader and slices of either.
type FileBinder struct {
	model *metadata.Model
}

// NewFileBinder returns a binder for the file model m.
func NewFileBinder(m *metadata.Model) *FileBinder {
	return &FileBinder{model: m}
}

// Bind implements Binder.
func (b *FileBinder) Bind(_ context.Context, bc Context) (Result, error) {
	state := bc.newState()

	fp, ok := bc.ValueProvider.(valueprovider.FileProvider)
	if !ok {
		return noResult(state), nil
	}
	files := fp.GetFiles(bc.ModelName)
	if len(files) == 0 {
		return noResult(state), nil
	}

	names := make([]string, len(files))
	for i, fh := range files {
		names[i] = fh.Filename
	}
	state.SetValue(bc.ModelName, names, names[0])

	t := b.model.Type
	if t == fileHeaderPtrType {
		return setResult(reflect.ValueOf(files[0]), state), nil
	}

	base := b.model.Base
	if base.Kind() != reflect.Slice {
		return setResult(toType(reflect.ValueOf(*files[0]), t), state), nil
	}

	v := reflect.MakeSlice(base, len(files), len(files))
	for i, fh := range files {
		if base.Elem() == fileHeaderPtrType {
			v.Index(i).Set(reflect.ValueOf(fh))
		} else {
			v.Index(i).Set(reflect.ValueOf(*fh))
		}
	}
	return setResult(toType(v, t), state), nil
}
