package utils

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateOrderNumber gera um número de pedido legível no formato PED-XXXXXX
func GenerateOrderNumber() (string, error) {
	suffix, err := gonanoid.Generate(orderNumberAlphabet, 6)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("PED-%s", suffix), nil
}
