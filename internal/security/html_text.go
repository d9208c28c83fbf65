package security

import (
	"strings"

	"golang.org/x/net/html"
)

// HTMLToText はHTML断片をプレーンテキストに変換する。
// RSSフィードのdescription等、HTMLエンティティやタグを含む本文を
// スコアリング前に正規化するために使用する。
// script/style要素の中身は出力に含めない。連続する空白は1つにまとめる。
// パースに失敗した場合は入力をそのまま返す。
func HTMLToText(fragment string) string {
	if fragment == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(b.String()), " ")
}
