//go:build linux

package process_linux

import (
	"fmt"

	"memwalk/process"

	"golang.org/x/sys/unix"
)

// processVMReadv reads len(localBuf) bytes at remoteAddr of pid in a single syscall
func processVMReadv(pid process.ProcessID, localBuf []byte, remoteAddr process.ProcessMemoryAddress) (int, error) {
	localIov := []unix.Iovec{{Base: &localBuf[0]}}
	localIov[0].SetLen(len(localBuf))

	remoteIov := []unix.RemoteIovec{{
		Base: uintptr(remoteAddr),
		Len:  len(localBuf),
	}}

	n, err := unix.ProcessVMReadv(int(pid), localIov, remoteIov, 0)
	if err != nil {
		return n, fmt.Errorf("process_vm_readv failed: %w", err)
	}
	return n, nil
}

// ReadMemory reads memory from the process at the specified address
func (p *LinuxProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	p.mu.Lock()
	pid := p.pid
	valid := p.isValidAddressInternal(addr)
	// Release the lock before the system call
	p.mu.Unlock()

	if pid == 0 {
		return nil, process.ErrProcessNotOpen
	}
	if !valid {
		return nil, process.ErrAddressNotMapped
	}
	if size == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, size)
	n, err := processVMReadv(pid, buf, addr)
	if err != nil {
		return nil, err
	}

	// Check if we read the expected number of bytes
	if n != len(buf) {
		return buf[:n], fmt.Errorf("partial read: %d of %d bytes", n, size)
	}

	return buf, nil
}
