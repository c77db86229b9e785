// Package alphabet は検出モデルのクラスindexと文字の対応表を提供します。
// 並び順は学習時のクラス定義そのもので、認識結果の互換性を決めます。
package alphabet

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// defaultSymbols は数字とロシア語キリル文字からなる既定のクラス並びです。
// ロシア紙幣のシリアル番号で使用される43クラスに対応します。
const defaultSymbols = "0123456789АБВГДЕЁЖЗИЙКЛМНОПРСТУФХЦЧШЩЪЫЬЭЮЯ"

// checksumLen はChecksumが返す16進文字列の長さです。
const checksumLen = 12

// Alphabet はクラスindex順に並んだ文字集合です。イミュータブルとして扱います。
type Alphabet struct {
	symbols  []rune
	index    map[rune]int
	checksum string
}

// New は与えられた文字列の各runeをクラスindex順の文字として使用します。
func New(symbols string) *Alphabet {
	runes := []rune(symbols)
	index := make(map[rune]int, len(runes))
	for i, r := range runes {
		if _, ok := index[r]; !ok {
			index[r] = i
		}
	}
	sum := sha256.Sum256([]byte(symbols))
	return &Alphabet{
		symbols:  runes,
		index:    index,
		checksum: hex.EncodeToString(sum[:])[:checksumLen],
	}
}

// Default は組み込みの数字+キリル文字アルファベットを返します。
func Default() *Alphabet {
	return New(defaultSymbols)
}

// classNames はYOLOデータセット定義ファイルのうち、本パッケージが読む部分です。
type classNames struct {
	Names []string `yaml:"names"`
}

// Load はYOLO形式のデータセット定義YAMLからnames一覧を読み込みます。
// 各クラス名は1文字である必要があります。
func Load(path string) (*Alphabet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alphabet file: %w", err)
	}

	var doc classNames
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse alphabet file %s: %w", path, err)
	}
	if len(doc.Names) == 0 {
		return nil, fmt.Errorf("alphabet file %s has no names", path)
	}

	runes := make([]rune, 0, len(doc.Names))
	for i, name := range doc.Names {
		if utf8.RuneCountInString(name) != 1 {
			return nil, fmt.Errorf("alphabet file %s: class %d (%q) is not a single character", path, i, name)
		}
		r, _ := utf8.DecodeRuneInString(name)
		runes = append(runes, r)
	}
	return New(string(runes)), nil
}

// CharAt はクラスindexに対応する文字を返します。indexが範囲外の場合はokがfalseです。
func (a *Alphabet) CharAt(classIndex int) (string, bool) {
	if classIndex < 0 || classIndex >= len(a.symbols) {
		return "", false
	}
	return string(a.symbols[classIndex]), true
}

// IndexOf は文字に対応するクラスindexを返します。アルファベット外の文字はokがfalseです。
func (a *Alphabet) IndexOf(symbol string) (int, bool) {
	if utf8.RuneCountInString(symbol) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(symbol)
	i, ok := a.index[r]
	return i, ok
}

// Len はクラス数を返します。
func (a *Alphabet) Len() int {
	return len(a.symbols)
}

// Checksum はアルファベット内容の短い指紋を返します。
// 認識結果と一緒に保存しておくと、後からどのクラス定義で解釈されたかを追跡できます。
func (a *Alphabet) Checksum() string {
	return a.checksum
}

// String は全クラスを並べた文字列を返します。ログ出力用です。
func (a *Alphabet) String() string {
	return string(a.symbols)
}
