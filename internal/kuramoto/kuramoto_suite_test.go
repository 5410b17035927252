package kuramoto_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestKuramoto(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Kuramoto Suite")
}
