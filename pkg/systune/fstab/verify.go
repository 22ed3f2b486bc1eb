package fstab

import (
	"context"
	"errors"
	"fmt"

	"github.com/jamesainslie/systune/pkg/systune/execx"
)

// ErrVerifyFailed indicates the mount table failed syntax verification.
// After an edit this is treated as fatal by the caller: the pre-edit copy is
// restored and the process terminates, so the host is never left with an
// unmountable table.
var ErrVerifyFailed = errors.New("mount table verification failed")

// Verify runs findmnt's syntax check against the mount table at path.
// A non-zero exit wraps ErrVerifyFailed with the verifier's diagnostics.
func Verify(ctx context.Context, run execx.Runner, path string) error {
	out, err := run(ctx, "findmnt", "--verify", "--tab-file", path)
	if err != nil {
		if out != "" {
			return fmt.Errorf("%w: %s", ErrVerifyFailed, out)
		}
		return fmt.Errorf("%w: %v", ErrVerifyFailed, err)
	}
	return nil
}
