// Package testdata provides randomized fixture values for database tests.
package testdata

import (
	"strings"

	"github.com/brianvoe/gofakeit/v7"
)

func RandomName() string {
	return gofakeit.ProductName()
}

func RandomDescription() string {
	return gofakeit.Sentence(8)
}

func RandomEmail() string {
	return gofakeit.Email()
}

func RandomFullName() string {
	return gofakeit.Name()
}

func RandomSlug() string {
	word := strings.ToLower(gofakeit.AdjectiveDescriptive() + "-" + gofakeit.NounConcrete())
	return word + "-" + gofakeit.DigitN(4)
}
