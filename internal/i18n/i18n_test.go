package i18n

import (
	"strings"
	"testing"
	"testing/fstest"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

func TestNew_Matching(t *testing.T) {
	tests := []struct {
		locale string
		want   language.Tag
	}{
		{"en", language.English},
		{"zh", language.Chinese},
		{"zh-CN", language.Chinese},
		{"fr-FR,zh;q=0.8", language.Chinese},
		{"fr", language.English},
		{"", language.English},
		{"!!", language.English},
	}

	for _, tc := range tests {
		if got := New(tc.locale).Tag(); got != tc.want {
			t.Errorf("New(%q).Tag() = %v, want %v", tc.locale, got, tc.want)
		}
	}
}

func TestPrinter_T(t *testing.T) {
	en := New("en")
	zh := New("zh")

	if got := en.T("state.ready"); got != "ready" {
		t.Errorf("en state.ready = %q", got)
	}
	if got := zh.T("state.ready"); got != "就绪" {
		t.Errorf("zh state.ready = %q", got)
	}

	got := zh.T("selftest.ok", "ZSTD", "Hello ZSTD!", 20, "Hello ZSTD!")
	want := `ZSTD测试成功！原文: "Hello ZSTD!" -> 压缩后: 20 bytes -> 解压后: "Hello ZSTD!"`
	if got != want {
		t.Errorf("zh selftest.ok = %q, want %q", got, want)
	}

	if got := en.T("reload.done", 4, 1); got != "Reload finished: 4 ready, 1 failed" {
		t.Errorf("en reload.done = %q", got)
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	var files [2]catalogFile
	for i, name := range []string{"locales/en.yaml", "locales/zh.yaml"} {
		data, err := embeddedFS.ReadFile(name)
		if err != nil {
			t.Fatal(err)
		}
		if err := yaml.Unmarshal(data, &files[i]); err != nil {
			t.Fatal(err)
		}
	}

	for key := range files[0].Messages {
		if _, ok := files[1].Messages[key]; !ok {
			t.Errorf("zh catalog lacks %q", key)
		}
	}
	for key := range files[1].Messages {
		if _, ok := files[0].Messages[key]; !ok {
			t.Errorf("en catalog lacks %q", key)
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
		want string
	}{
		{"empty", fstest.MapFS{}, "no catalog files"},
		{"bad yaml", fstest.MapFS{"locales/en.yaml": {Data: []byte("locale: [")}}, "parse catalog"},
		{"no messages", fstest.MapFS{"locales/en.yaml": {Data: []byte("locale: en\n")}}, "messages map"},
		{"bad locale", fstest.MapFS{"locales/xx.yaml": {Data: []byte("locale: \"!!\"\nmessages:\n  a: b\n")}}, "locale"},
		{"no base", fstest.MapFS{"locales/zh.yaml": {Data: []byte("locale: zh\nmessages:\n  a: b\n")}}, "base locale"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Load(tc.fsys)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Load error = %v, want containing %q", err, tc.want)
			}
		})
	}
}

func TestSupported(t *testing.T) {
	tags := Supported()
	if len(tags) != 2 || tags[0] != BaseLocale {
		t.Errorf("Supported() = %v", tags)
	}
}
