package render

import (
	"html/template"
	"kadmeia/internal/domain/config"
	"kadmeia/internal/domain/content"
	"time"
)

type Heading struct {
	Level int
	ID    string
	Text  string
}

type HomePage struct {
	Site      config.SiteConfig
	Lang      content.Lang
	Posts     []*content.Post
	Cases     []*content.CaseStudy
	Generated time.Time
	Title     string
}

type ListPage struct {
	Site      config.SiteConfig
	Lang      content.Lang
	Kind      content.Kind
	Title     string
	Items     []*content.Entry
	Generated time.Time
}

type EntryPage struct {
	Site    config.SiteConfig
	Entry   *content.Entry
	HTML    template.HTML
	TOC     []Heading
	Related []content.RelatedItem
	Nav     content.PrevNext
	Title   string
}

type NotFoundPage struct {
	Site config.SiteConfig
	Lang content.Lang
	Path string
}
