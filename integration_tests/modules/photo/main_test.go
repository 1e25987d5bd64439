//go:build integration

package photointegrationtests

import (
	"log"
	"os"
	"testing"

	"github.com/Black-And-White-Club/photoshare/integration_tests/testutils"
)

var testEnv *testutils.TestEnvironment

func TestMain(m *testing.M) {
	env, err := testutils.NewTestEnvironment(testutils.Options{})
	if err != nil {
		log.Fatalf("Failed to set up test environment: %v", err)
	}
	testEnv = env

	code := m.Run()
	testEnv.Cleanup()
	os.Exit(code)
}
