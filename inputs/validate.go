package inputs

import "context"

// Validatable - an interface that allows for validation of inputs and params
type Validatable interface {
	Validate(context.Context) error
}

// Validate - a validatable thing
func Validate(ctx context.Context, v Validatable) error {
	return v.Validate(ctx)
}

// DecodeAndValidate - decode and validate a request in one pass
func DecodeAndValidate(ctx context.Context, v interface {
	Decodable
	Validatable
}, input []byte) error {
	if err := v.Decode(ctx, input); err != nil {
		return err
	}
	return v.Validate(ctx)
}
