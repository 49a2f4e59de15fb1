package config

import (
	"fmt"
	"io/fs"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsMissingConfigFile(t *testing.T) {
	require.True(t, isMissingConfigFile(&os.PathError{
		Op:   "open",
		Path: "/home/user/.sharp/config.yaml",
		Err:  fs.ErrNotExist,
	}))
	require.True(t, isMissingConfigFile(fmt.Errorf("reading config: %w", fs.ErrNotExist)))

	// an unreadable file the user pointed at must not pass as missing
	require.False(t, isMissingConfigFile(&os.PathError{
		Op:   "open",
		Path: "/etc/sharp/config.yaml",
		Err:  syscall.EACCES,
	}))
	require.False(t, isMissingConfigFile(fmt.Errorf("some other failure")))
}
