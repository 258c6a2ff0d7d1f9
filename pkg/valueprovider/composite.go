package valueprovider

import "mime/multipart"

// Composite queries its providers in order; the first one holding a value wins.
type Composite []ValueProvider

// ContainsPrefix implements ValueProvider.
func (c Composite) ContainsPrefix(prefix string) bool {
	for _, p := range c {
		if p.ContainsPrefix(prefix) {
			return true
		}
	}
	return false
}

// GetValue implements ValueProvider.
func (c Composite) GetValue(key string) Result {
	for _, p := range c {
		if r := p.GetValue(key); !r.IsEmpty() {
			return r
		}
	}
	return None
}

// GetFiles implements FileProvider.
func (c Composite) GetFiles(key string) []*multipart.FileHeader {
	for _, p := range c {
		if fp, ok := p.(FileProvider); ok {
			if files := fp.GetFiles(key); len(files) > 0 {
				return files
			}
		}
	}
	return nil
}

// Body implements BodyProvider. It returns nil when no provider carries a body.
func (c Composite) Body() ([]byte, string) {
	for _, p := range c {
		if bp, ok := p.(BodyProvider); ok {
			if data, ct := bp.Body(); data != nil {
				return data, ct
			}
		}
	}
	return nil, ""
}
