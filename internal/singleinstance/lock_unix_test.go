//go:build unix

package singleinstance

import "testing"

func testLockName(t *testing.T, suffix string) string {
	t.Helper()
	dir := t.TempDir()
	orig := lockDirFn
	lockDirFn = func() string { return dir }
	t.Cleanup(func() { lockDirFn = orig })
	return `Local\LangTray-test-` + suffix
}
