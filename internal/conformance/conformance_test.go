// Package conformance runs the full compile-and-execute pipeline over
// small end-to-end programs, checking their printed output rather than
// unit-testing each stage in isolation.
package conformance

import (
	"bytes"
	"testing"

	"github.com/mna/toylang/config"
	"github.com/mna/toylang/lang/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSource(t *testing.T, src string) (string, error) {
	t.Helper()
	s := driver.NewSession("test.toy", []byte(src))
	prog, err := s.CompileCode(driver.Options{}, nil)
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	_, err = driver.Run(prog, config.DefaultLimits(), &out)
	return out.String(), err
}

func TestConcreteScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "arithmetic precedence",
			src:  `print(2*2+4/2-1);`,
			want: "5\n",
		},
		{
			name: "while loop",
			src:  `i := 0; while i < 5 { print(i); i = i + 1; }`,
			want: "0\n1\n2\n3\n4\n",
		},
		{
			name: "recursive function",
			src: `fib :: func(n:i32)->i32 { if n<=1 { return n; } else { return fib(n-1)+fib(n-2); } };
			      print(fib(7));`,
			want: "13\n",
		},
		{
			name: "struct field access",
			src: `T :: struct { x:i32; y:i32; };
			      p:T;
			      p.x=3;
			      p.y=4;
			      print(p.x+p.y);`,
			want: "7\n",
		},
		{
			name: "explicit and implicit casts",
			src:  `print(as(i32) 5.0 + 3); print(5 + 5.0);`,
			want: "8\n10\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := runSource(t, tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// TestTypeMismatchRejected covers scenario 6: a declared type that disagrees
// with its initializer's type is a checker error, and no bytecode is ever
// generated for it.
func TestTypeMismatchRejected(t *testing.T) {
	s := driver.NewSession("test.toy", []byte(`k:i32 = true;`))
	prog, err := s.CompileCode(driver.Options{}, nil)
	require.Error(t, err)
	require.Nil(t, prog)
	assert.Contains(t, err.Error(), "i32")
	assert.Contains(t, err.Error(), "bool")
}
