//go:build windows

package singleinstance

import "testing"

func testLockName(t *testing.T, suffix string) string {
	t.Helper()
	return `Local\LangTray-test-` + suffix
}
