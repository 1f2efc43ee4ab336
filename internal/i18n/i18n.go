// Package i18n holds the CLI message catalogs.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the fallback for unknown locales and missing keys.
var BaseLocale = language.English

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

//go:embed locales/*.yaml
var embeddedFS embed.FS

var (
	defaultCatalog *catalog.Builder
	supported      []language.Tag
	matcher        language.Matcher
)

func init() {
	cat, tags, err := Load(embeddedFS)
	if err != nil {
		panic(err)
	}
	defaultCatalog, supported = cat, tags
	matcher = language.NewMatcher(supported)
}

// Load parses locales/*.yaml from fsys into a catalog. The returned tags
// start with BaseLocale.
func Load(fsys fs.FS) (*catalog.Builder, []language.Tag, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	cat := catalog.NewBuilder(catalog.Fallback(BaseLocale))
	tags := []language.Tag{BaseLocale}
	hasBase := false

	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		if len(file.Messages) == 0 {
			return nil, nil, fmt.Errorf("catalog %s: messages map is required", path)
		}
		tag, err := language.Parse(file.Locale)
		if err != nil {
			return nil, nil, fmt.Errorf("catalog %s: locale %q: %w", path, file.Locale, err)
		}

		for key, msg := range file.Messages {
			if err := cat.SetString(tag, key, msg); err != nil {
				return nil, nil, fmt.Errorf("catalog %s: key %q: %w", path, key, err)
			}
		}

		if tag == BaseLocale {
			hasBase = true
		} else {
			tags = append(tags, tag)
		}
	}

	if !hasBase {
		return nil, nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	return cat, tags, nil
}

// Printer formats catalog messages for one locale.
type Printer struct {
	p   *message.Printer
	tag language.Tag
}

// New returns a printer for the best supported match of locale, which may be
// a tag list such as "zh-CN,zh;q=0.9". Unknown locales get BaseLocale.
func New(locale string) *Printer {
	tag := BaseLocale
	if desired, _, err := language.ParseAcceptLanguage(locale); err == nil && len(desired) > 0 {
		_, idx, conf := matcher.Match(desired...)
		if conf != language.No {
			tag = supported[idx]
		}
	}
	return &Printer{
		p:   message.NewPrinter(tag, message.Catalog(defaultCatalog)),
		tag: tag,
	}
}

// T formats the message stored under key.
func (p *Printer) T(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}

// Tag returns the locale the printer resolved to.
func (p *Printer) Tag() language.Tag {
	return p.tag
}

// Supported returns the locales with a catalog.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}
