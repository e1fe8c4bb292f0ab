package loader

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.so"))
	assert.Error(t, err)
}

func TestCall(t *testing.T) {
	cc, err := exec.LookPath("cc")
	if err != nil {
		t.Skip("no C driver")
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "add.c")
	so := filepath.Join(dir, "add.so")

	err = os.WriteFile(src, []byte("int add(int a, int b) { return a + b; }\nint neg(int a) { return -a; }\n"), 0o600)
	require.NoError(t, err)

	out, err := exec.Command(cc, "-shared", "-fPIC", src, "-o", so).CombinedOutput()
	require.NoError(t, err, "%s", out)

	l, err := Open(so)
	require.NoError(t, err)

	add, err := l.Func("add")
	require.NoError(t, err)
	assert.Equal(t, 5, add.Int(2, 3))

	neg, err := l.Func("neg")
	require.NoError(t, err)
	assert.Equal(t, -7, neg.Int(7))

	p1, err := l.Sym("add")
	require.NoError(t, err)
	assert.Equal(t, add.Addr, p1)

	_, err = l.Sym("missing")
	assert.Error(t, err)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	_, err = l.Sym("add")
	assert.ErrorIs(t, err, ErrClosed)
}
