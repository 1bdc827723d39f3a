// Package multiboot provides access to the boot information that a
// multiboot2 compliant bootloader passes to the kernel.
package multiboot

import (
	"strings"
	"unsafe"
)

var (
	infoData  uintptr
	cmdLineKV map[string]string
)

type tagType uint32

// nolint
const (
	tagMbSectionEnd tagType = iota
	tagBootCmdLine
	tagBootLoaderName
)

// tagHeader describes the header the preceedes each tag.
type tagHeader struct {
	// The type of the tag
	tagType tagType

	// The size of the tag including the header but *not* including any
	// padding. According to the spec, each tag starts at a 8-byte aligned
	// address.
	size uint32
}

// SetInfoPtr updates the internal multiboot information pointer to the given
// value. This function must be invoked before invoking any other function
// exported by this package. A zero pointer means that no boot information is
// available.
func SetInfoPtr(ptr uintptr) {
	infoData = ptr
	cmdLineKV = nil
}

// GetBootCmdLine returns the command line key-value pairs passed to the
// kernel. Flags without a value are mapped to themselves.
func GetBootCmdLine() map[string]string {
	if cmdLineKV != nil {
		return cmdLineKV
	}

	cmdLineKV = make(map[string]string)
	for _, pair := range strings.Fields(tagString(tagBootCmdLine)) {
		kv := strings.Split(pair, "=")
		switch len(kv) {
		case 2: // foo=bar
			cmdLineKV[kv[0]] = kv[1]
		case 1: // nofoo
			cmdLineKV[kv[0]] = kv[0]
		}
	}

	return cmdLineKV
}

// GetBootLoaderName returns the name of the bootloader that loaded the kernel
// or an empty string if the bootloader did not provide one.
func GetBootLoaderName() string {
	return tagString(tagBootLoaderName)
}

// tagString returns the contents of a tag that holds a C-style NULL-terminated
// string.
func tagString(tagType tagType) string {
	curPtr, size := findTagByType(tagType)
	if size <= 1 {
		return ""
	}

	return string(unsafe.Slice((*byte)(unsafe.Pointer(curPtr)), size-1))
}

// findTagByType scans the multiboot info data looking for the start of of the
// specified type. It returns a pointer to the tag contents start offset and
// the content length exluding the tag header.
//
// If the tag is not present in the multiboot info, findTagSection will return
// back (0,0). The walk also stops at the end of the info payload and at any
// tag whose size is smaller than its header.
func findTagByType(tagType tagType) (uintptr, uint32) {
	if infoData == 0 {
		return 0, 0
	}

	var (
		ptrTagHeader *tagHeader
		endPtr       = infoData + uintptr(*(*uint32)(unsafe.Pointer(infoData)))
	)

	for curPtr := infoData + 8; curPtr+8 <= endPtr; {
		ptrTagHeader = (*tagHeader)(unsafe.Pointer(curPtr))
		if ptrTagHeader.tagType == tagMbSectionEnd || ptrTagHeader.size < 8 {
			break
		}

		if ptrTagHeader.tagType == tagType {
			if curPtr+uintptr(ptrTagHeader.size) > endPtr {
				break
			}
			return curPtr + 8, ptrTagHeader.size - 8
		}

		// Tags are aligned at 8-byte aligned addresses
		curPtr += (uintptr(ptrTagHeader.size) + 7) &^ 7
	}

	return 0, 0
}
