package trace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apat9/KVC-PIM/sim/dram"
)

func writeTempTrace(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadTraceFile_ParsesOpcodesAndAddressVectors(t *testing.T) {
	path := writeTempTrace(t, `
R 0,1,2,3
W 0,2,7,0
C 1,0,0,0
SR 0,0,1,1
SW 0,0,1,2
BR 0,3,0,0
BW 0,3,0,1
`)

	ops, kernels, err := ReadTraceFile(path)
	require.NoError(t, err)
	assert.Empty(t, kernels)
	require.Len(t, ops, 7)

	wantKinds := []OpKind{Read, Write, Compute, SubarrayRead, SubarrayWrite, BankRead, BankWrite}
	for i, kind := range wantKinds {
		assert.Equal(t, kind, ops[i].Kind, "op %d", i)
		assert.Equal(t, -1, ops[i].Kernel, "op %d", i)
	}
	assert.Equal(t, dram.AddressVector{0, 1, 2, 3}, ops[0].Addr)
}

func TestReadTraceFile_CollectsKernelBodiesAndEmitsReferences(t *testing.T) {
	path := writeTempTrace(t, `
W 0,0,1,0
gemm 64 64
tile 8 8
R 0,1,0,0
end
conv2d 3 3
end
R 0,2,0,0
`)

	ops, kernels, err := ReadTraceFile(path)
	require.NoError(t, err)

	require.Len(t, kernels, 2)
	assert.Equal(t, "gemm", kernels[0].Name)
	assert.Equal(t, [][]string{{"tile", "8", "8"}, {"R", "0,1,0,0"}}, kernels[0].Body)
	assert.Equal(t, "conv2d", kernels[1].Name)
	assert.Empty(t, kernels[1].Body)

	require.Len(t, ops, 4)
	assert.Equal(t, Write, ops[0].Kind)
	assert.Equal(t, KernelRef, ops[1].Kind)
	assert.Equal(t, 0, ops[1].Kernel)
	assert.Equal(t, KernelRef, ops[2].Kind)
	assert.Equal(t, 1, ops[2].Kernel)
	assert.Equal(t, Read, ops[3].Kind)
}

func TestReadTraceFile_FatalOnBadInput(t *testing.T) {
	_, _, err := ReadTraceFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err, "missing file is a configuration error")

	_, _, err = ReadTraceFile(writeTempTrace(t, "XX 0,1\n"))
	assert.ErrorContains(t, err, "unresolvable opcode")

	_, _, err = ReadTraceFile(writeTempTrace(t, "R 0,foo,2\n"))
	assert.ErrorContains(t, err, "malformed address component")

	_, _, err = ReadTraceFile(writeTempTrace(t, "R\n"))
	assert.ErrorContains(t, err, "missing address vector")

	_, _, err = ReadTraceFile(writeTempTrace(t, "gemm 4 4\nR 0,0\n"))
	assert.ErrorContains(t, err, "not closed")
}

func TestReadWeightTrace_ExtractsBankAndSignature(t *testing.T) {
	path := writeTempTrace(t, `
W 0,3,0,0,77,0
R 0,1,0,0,12,0
C 0,5,0,0,99,0
W 0,3,0,0,78,0
W not-a-vector
W 0,500,0,0,1,0
W 0,2
`)

	weights, err := ReadWeightTrace(path, 16)
	require.NoError(t, err)

	// Only W and R lines count; compute is ignored.
	assert.Len(t, weights[3], 2, "bank 3 should hold signatures 77 and 78")
	assert.Contains(t, weights[3], uint64(77))
	assert.Contains(t, weights[1], uint64(12))
	assert.NotContains(t, weights, 5)

	// Out-of-range banks are dropped; short vectors default the signature.
	assert.NotContains(t, weights, 500)
	assert.Contains(t, weights[2], uint64(0))
}

func TestReadWeightTrace_MissingFileIsAnError(t *testing.T) {
	_, err := ReadWeightTrace(filepath.Join(t.TempDir(), "nope.txt"), 8)
	assert.Error(t, err)
}

func TestOpKindString(t *testing.T) {
	assert.Equal(t, "subarray-read", SubarrayRead.String())
	assert.Equal(t, "kernel", KernelRef.String())
	assert.Equal(t, "unknown", OpKind(99).String())
}
