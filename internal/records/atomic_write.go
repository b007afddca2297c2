//go:build !windows

package records

import "github.com/google/renameio/v2"

// writeFileAtomic writes through a pending file that is fsynced and renamed
// over path, so readers see either the old or the new log
func writeFileAtomic(path string, data []byte) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return err
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return err
	}
	return pending.CloseAtomicallyReplace()
}
