package run

import (
	"net"
	"os"
	"path/filepath"
	"runtime"

	"stagekeeper/internal/logger"
)

type ListenAddr struct {
	Network string
	Address string
}

/**
 * Test if the system supports Unix socket network type
 * @returns {bool} Returns true if Unix socket is supported, false otherwise
 * @description
 * - Creates a temporary Unix socket to test system support
 * - Cleans up test socket file after testing
 */
func IsUnixSocketSupported() bool {
	if runtime.GOOS != "windows" { //window,linux,darwin
		return true
	}
	// 尝试创建一个临时的Unix socket来测试系统是否支持
	testSocketPath := filepath.Join(os.TempDir(), "test_unix_socket.sock")
	os.Remove(testSocketPath)

	listener, err := net.Listen("unix", testSocketPath)
	if err != nil {
		return false
	}

	listener.Close()
	os.Remove(testSocketPath)
	return true
}

/**
 * Create TCP and Unix socket listeners for cross-platform support
 * @param {[]ListenAddr} addrs - Listener Address
 * @returns {[]net.Listener} Array of created listeners
 * @returns {error} Error if listener creation fails
 * @description
 * - Cleans up existing socket files before creating new ones
 * - A single failed listener does not prevent the others
 */
func CreateListeners(addrs []ListenAddr) ([]net.Listener, error) {
	var listeners []net.Listener

	var lastErr error
	for _, addr := range addrs {
		if addr.Network == "unix" {
			if err := os.Remove(addr.Address); err != nil && !os.IsNotExist(err) {
				logger.Errorf("Failed to remove existing socket file: %v", err)
				continue
			}
		}
		listener, err := net.Listen(addr.Network, addr.Address)
		if err != nil {
			logger.Errorf("Failed to create listener on %s://%s: %v", addr.Network, addr.Address, err)
			lastErr = err
			continue
		}
		listeners = append(listeners, listener)
	}
	return listeners, lastErr
}
