// Package sanitizer normalizes request data before validation and storage.
//
// All functions are idempotent - applying them twice produces the same
// result - and handle invalid input by returning empty strings rather than
// errors.
package sanitizer

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}
