//go:build windows

package secrets

import (
	"errors"
	"fmt"
	"log/slog"
	"os/user"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

// CredTargetPrefix namespaces stockalert entries in the Windows
// Credential Manager; the caller key is appended to it.
const CredTargetPrefix = "stockalert/"

var (
	advapi32           = windows.NewLazySystemDLL("advapi32.dll")
	procCredWriteW     = advapi32.NewProc("CredWriteW")
	procCredReadW      = advapi32.NewProc("CredReadW")
	procCredDeleteW    = advapi32.NewProc("CredDeleteW")
	procCredEnumerateW = advapi32.NewProc("CredEnumerateW")
	procCredFree       = advapi32.NewProc("CredFree")
)

const (
	credTypeGeneric         = 1
	credPersistLocalMachine = 2
)

// winCredential mirrors the CREDENTIALW layout.
type winCredential struct {
	Flags              uint32
	Type               uint32
	TargetName         *uint16
	Comment            *uint16
	LastWritten        windows.Filetime
	CredentialBlobSize uint32
	CredentialBlob     *byte
	Persist            uint32
	AttributeCount     uint32
	Attributes         uintptr
	TargetAlias        *uint16
	UserName           *uint16
}

// CredManagerStore stores secrets as generic credentials in the Windows
// Credential Manager with local-machine persistence.
type CredManagerStore struct{}

func newCredManagerStore() (Store, error) {
	return &CredManagerStore{}, nil
}

func (s *CredManagerStore) MethodID() string { return PolicyWindowsCredential }

func (s *CredManagerStore) MethodDescription() string {
	return "Windows Credential Manager"
}

func (s *CredManagerStore) Set(key, secret, label string) bool {
	if !validRecord(s.MethodID(), key, secret) {
		return false
	}

	target, err := windows.UTF16PtrFromString(CredTargetPrefix + key)
	if err != nil {
		slog.Warn("credential manager write failed", "key", key, "error", err)
		return false
	}
	comment, err := windows.UTF16PtrFromString(label)
	if err != nil {
		slog.Warn("credential manager write failed", "key", key, "error", err)
		return false
	}
	username, err := windows.UTF16PtrFromString(currentWindowsUser())
	if err != nil {
		slog.Warn("credential manager write failed", "key", key, "error", err)
		return false
	}

	blob := []byte(secret)
	cred := winCredential{
		Type:               credTypeGeneric,
		TargetName:         target,
		Comment:            comment,
		CredentialBlobSize: uint32(len(blob)),
		CredentialBlob:     &blob[0],
		Persist:            credPersistLocalMachine,
		UserName:           username,
	}

	ret, _, callErr := procCredWriteW.Call(uintptr(unsafe.Pointer(&cred)), 0)
	if ret == 0 {
		slog.Warn("credential manager write failed", "key", key, "error", callErr)
		return false
	}
	return true
}

func (s *CredManagerStore) Get(key string) (string, error) {
	target, err := windows.UTF16PtrFromString(CredTargetPrefix + key)
	if err != nil {
		return "", fmt.Errorf("credential manager get %q: %w", key, err)
	}

	var pcred *winCredential
	ret, _, callErr := procCredReadW.Call(
		uintptr(unsafe.Pointer(target)),
		credTypeGeneric,
		0,
		uintptr(unsafe.Pointer(&pcred)),
	)
	if ret == 0 {
		if errors.Is(callErr, windows.ERROR_NOT_FOUND) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return "", fmt.Errorf("credential manager get %q: %w", key, callErr)
	}
	defer procCredFree.Call(uintptr(unsafe.Pointer(pcred)))

	if pcred.CredentialBlobSize == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	blob := unsafe.Slice(pcred.CredentialBlob, pcred.CredentialBlobSize)
	return string(blob), nil
}

func (s *CredManagerStore) Delete(key string) bool {
	target, err := windows.UTF16PtrFromString(CredTargetPrefix + key)
	if err != nil {
		slog.Warn("credential manager delete failed", "key", key, "error", err)
		return false
	}
	ret, _, callErr := procCredDeleteW.Call(uintptr(unsafe.Pointer(target)), credTypeGeneric, 0)
	if ret == 0 && !errors.Is(callErr, windows.ERROR_NOT_FOUND) {
		slog.Warn("credential manager delete failed", "key", key, "error", callErr)
		return false
	}
	return true
}

func (s *CredManagerStore) Exists(key string) bool {
	_, err := s.Get(key)
	return err == nil
}

func (s *CredManagerStore) List() ([]string, error) {
	filter, err := windows.UTF16PtrFromString(CredTargetPrefix + "*")
	if err != nil {
		return nil, fmt.Errorf("credential manager list: %w", err)
	}

	var count uint32
	var pcreds uintptr
	ret, _, callErr := procCredEnumerateW.Call(
		uintptr(unsafe.Pointer(filter)),
		0,
		uintptr(unsafe.Pointer(&count)),
		uintptr(unsafe.Pointer(&pcreds)),
	)
	if ret == 0 {
		if errors.Is(callErr, windows.ERROR_NOT_FOUND) {
			return nil, nil
		}
		return nil, fmt.Errorf("credential manager list: %w", callErr)
	}
	defer procCredFree.Call(pcreds)

	creds := unsafe.Slice((**winCredential)(unsafe.Pointer(pcreds)), count)
	keys := make([]string, 0, count)
	for _, c := range creds {
		name := windows.UTF16PtrToString(c.TargetName)
		keys = append(keys, strings.TrimPrefix(name, CredTargetPrefix))
	}
	return keys, nil
}

func currentWindowsUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "stockalert"
}
