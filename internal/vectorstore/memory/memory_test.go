package memory

import (
	"testing"

	"pdfrag/internal/vectorstore/storetest"
)

func TestStorage(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Store { return NewStorage() })
}
