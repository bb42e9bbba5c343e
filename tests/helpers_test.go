package tests_test

import (
	"fmt"
	"strings"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"
)

// expectStatus returns a comparator verifying the analysis status line.
func expectStatus(status string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		expected := fmt.Sprintf("status: %s", status)

		if !strings.Contains(stdout, expected) {
			testing.Log(fmt.Sprintf("expected status %q not found in output:\n%s", status, stdout))
			testing.Fail()
		}
	}
}

// expectAnyFlag returns a comparator verifying that at least one of the given flags was raised.
func expectAnyFlag(flags ...string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		for _, flag := range flags {
			if strings.Contains(stdout, flag) {
				return
			}
		}

		testing.Log(fmt.Sprintf("expected one of %v in output:\n%s", flags, stdout))
		testing.Fail()
	}
}

// expectNoFlag returns a comparator verifying that the given flag was not raised.
func expectNoFlag(flag string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if strings.Contains(stdout, flag) {
			testing.Log(fmt.Sprintf("expected no %q but it was raised in output:\n%s", flag, stdout))
			testing.Fail()
		}
	}
}

// expectContains returns a comparator verifying the output contains a substring.
func expectContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if !strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("expected substring %q not found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}
