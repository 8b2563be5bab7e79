package server

import (
	"os"
	"testing"

	"github.com/viant/mcpbridge/internal/fakeproc"
)

func TestMain(m *testing.M) {
	fakeproc.Main()
	os.Exit(m.Run())
}
