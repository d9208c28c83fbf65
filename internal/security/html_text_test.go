package security

import "testing"

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "タグが除去される",
			input: "<p>Need a <b>React</b> developer</p>",
			want:  "Need a React developer",
		},
		{
			name:  "連続する空白がまとめられる",
			input: "<p>Budget:\n\n  $500</p>",
			want:  "Budget: $500",
		},
		{
			name:  "script要素の中身は含めない",
			input: "<script>var x = 1;</script>help needed",
			want:  "help needed",
		},
		{
			name:  "style要素の中身は含めない",
			input: "<style>p { color: red }</style>urgent",
			want:  "urgent",
		},
		{
			name:  "HTMLエンティティがデコードされる",
			input: "fix &amp; deploy",
			want:  "fix & deploy",
		},
		{
			name:  "プレーンテキストはそのまま",
			input: "site is down",
			want:  "site is down",
		},
		{
			name:  "空入力",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTMLToText(tt.input); got != tt.want {
				t.Errorf("HTMLToText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
