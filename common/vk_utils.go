package common

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Provides general helper functions for comparisons and conversions

// Missing returns every entry of required that is not contained in available. This is mainly used to check for
// extension and layer support during the initialization process.
func Missing(required []string, available []string) []string {
	have := make(map[string]struct{}, len(available))
	for _, a := range available {
		have[strings.TrimRight(a, "\x00")] = struct{}{}
	}
	var missing []string
	for _, r := range required {
		if _, ok := have[strings.TrimRight(r, "\x00")]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}

// AllOfAinB reports whether every entry of a is contained in b.
func AllOfAinB(a []string, b []string) bool {
	return len(Missing(a, b)) == 0
}

// TerminatedStr ensures the given string is \x00 terminated as vulkan expects this in certain structs
func TerminatedStr(s string) string {
	if !strings.HasSuffix(s, "\x00") {
		return s + "\x00"
	}
	return s
}

// TerminatedStrs returns terminated copies, the input slice is left untouched.
func TerminatedStrs(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}
	out := make([]string, len(strs))
	for i := range strs {
		out[i] = TerminatedStr(strs[i])
	}
	return out
}

// AsUint32Arr converts SPIR-V bytes into the word slice vk.ShaderModuleCreateInfo expects. The bytes are copied
// so the result is correctly aligned no matter where the input came from.
func AsUint32Arr(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("shader code size %d is not a multiple of 4", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words, nil
}
