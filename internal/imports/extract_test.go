package imports

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/xcgraph/internal/ctxlog"
)

func TestExtractImports(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "blank line ends the block",
			src:  "#import \"A.h\"\n#import \"B.h\"\n\n#import \"C.h\"\n",
			want: []string{"A.h", "B.h"},
		},
		{
			name: "code ends the block",
			src:  "#import \"A.h\"\n@interface X : NSObject\n#import \"B.h\"\n",
			want: []string{"A.h"},
		},
		{
			name: "leading comment and blank lines are skipped",
			src:  "// Copyright\n\n//\n#import \"A.h\"\n#import \"B.h\"\n",
			want: []string{"A.h", "B.h"},
		},
		{
			name: "angle brackets contribute nothing",
			src:  "#import <UIKit/UIKit.h>\n#import \"A.h\"\n",
			want: []string{"A.h"},
		},
		{
			name: "single quote mark",
			src:  "#import \"A.h\n#import \"B.h\"\n",
			want: []string{"B.h"},
		},
		{
			name: "crlf",
			src:  "#import \"A.h\"\r\n#import \"B.h\"\r\n\r\nint x;\r\n",
			want: []string{"A.h", "B.h"},
		},
		{
			name: "no imports",
			src:  "int main(void) { return 0; }\n",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractImports(context.Background(), strings.NewReader(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractImports_LongLines(t *testing.T) {
	license := "// " + strings.Repeat("x", 200*1024) + "\n"
	longImport := "#import \"B.h\" // " + strings.Repeat("y", 100*1024) + "\n"
	src := license + "\n#import \"A.h\"\n" + longImport + "#import \"C.h\""

	got, err := ExtractImports(context.Background(), strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"A.h", "B.h", "C.h"}, got)
}

func TestExtractImports_LogsUnquotedImport(t *testing.T) {
	var buf bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), ctxlog.New(&buf, true))

	_, err := ExtractImports(ctx, strings.NewReader("#import <Foundation/Foundation.h>\n"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "unquoted import")
	assert.Contains(t, buf.String(), "line=1")
}
