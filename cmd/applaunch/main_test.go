package main

import (
	"os"
	"testing"

	"github.com/giantswarm/applaunch/internal/testutil"
)

func TestMain(m *testing.M) {
	testutil.RunHelperIfRequested()
	testutil.SetupTestLogging()
	os.Exit(m.Run())
}
