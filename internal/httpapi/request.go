// Package httpapi is a thin gin HTTP surface over pkg/docpdf. It accepts a
// pre-parsed document structure as JSON rather than a raw WordprocessingML
// package, since this repository has no OOXML-backed
// docmodel.SemanticParser: the request body plays the role a real OOXML
// parser's output would, letting the endpoint be exercised without one.
package httpapi

import (
	"encoding/base64"
	"fmt"

	"github.com/quillforge/docpdf/internal/docmodel"
	"github.com/quillforge/docpdf/internal/geometry"
)

// ElementDTO mirrors docmodel.Element with JSON tags; Attrs is passed
// through verbatim since its shape is kind-specific and loosely typed in
// the domain model itself.
type ElementDTO struct {
	Kind     string         `json:"kind"`
	Attrs    map[string]any `json:"attrs,omitempty"`
	Children []ElementDTO   `json:"children,omitempty"`
}

func (e ElementDTO) toElement() docmodel.Element {
	children := make([]docmodel.Element, len(e.Children))
	for i, c := range e.Children {
		children[i] = c.toElement()
	}
	return docmodel.Element{
		Kind:     docmodel.ElementKind(e.Kind),
		Attrs:    e.Attrs,
		Children: children,
	}
}

func toElements(dtos []ElementDTO) []docmodel.Element {
	out := make([]docmodel.Element, len(dtos))
	for i, d := range dtos {
		out[i] = d.toElement()
	}
	return out
}

func toElementMap(dtos map[string][]ElementDTO) map[string][]docmodel.Element {
	if dtos == nil {
		return nil
	}
	out := make(map[string][]docmodel.Element, len(dtos))
	for k, v := range dtos {
		out[k] = toElements(v)
	}
	return out
}

// SectionDTO mirrors docmodel.SectionMargins.
type SectionDTO struct {
	PageWidth    float64 `json:"pageWidth"`
	PageHeight   float64 `json:"pageHeight"`
	MarginTop    float64 `json:"marginTop"`
	MarginBottom float64 `json:"marginBottom"`
	MarginLeft   float64 `json:"marginLeft"`
	MarginRight  float64 `json:"marginRight"`
	HeaderOffset float64 `json:"headerOffset"`
	FooterOffset float64 `json:"footerOffset"`
}

func (s SectionDTO) toSectionMargins() docmodel.SectionMargins {
	return docmodel.SectionMargins{
		Page: geometry.Size{Width: s.PageWidth, Height: s.PageHeight},
		Margin: geometry.Margins{
			Top: s.MarginTop, Bottom: s.MarginBottom, Left: s.MarginLeft, Right: s.MarginRight,
			Header: s.HeaderOffset, Footer: s.FooterOffset,
		},
	}
}

// NumberingLevelDTO mirrors docmodel.NumberingLevel.
type NumberingLevelDTO struct {
	Format    string `json:"format"`
	Text      string `json:"text"`
	StartAt   int    `json:"startAt"`
	RestartOn int    `json:"restartOn"`
}

// DocumentInfoDTO mirrors docmodel.DocumentInfo.
type DocumentInfoDTO struct {
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Creator  string `json:"creator,omitempty"`
	Revision string `json:"revision,omitempty"`
}

func (d DocumentInfoDTO) toDocumentInfo() docmodel.DocumentInfo {
	return docmodel.DocumentInfo{
		Title: d.Title, Author: d.Author, Subject: d.Subject, Creator: d.Creator, Revision: d.Revision,
	}
}

// CompileRequest is the POST /v1/compile request body: a fully pre-parsed
// document structure plus the media referenced from it and the compiler
// knobs a caller wants applied.
type CompileRequest struct {
	Sections  []SectionDTO                    `json:"sections"`
	Body      []ElementDTO                    `json:"body"`
	Headers   map[string][]ElementDTO         `json:"headers,omitempty"`
	Footers   map[string][]ElementDTO         `json:"footers,omitempty"`
	Footnotes map[string][]ElementDTO         `json:"footnotes,omitempty"`
	Endnotes  map[string][]ElementDTO         `json:"endnotes,omitempty"`
	Numbering map[string][]NumberingLevelDTO  `json:"numbering,omitempty"`

	// Media maps a relationship path (e.g. "media/image1.png") to its
	// base64-encoded bytes, standing in for the binary parts a real OPC
	// package reader would serve.
	Media map[string]string `json:"media,omitempty"`

	Info                DocumentInfoDTO `json:"info,omitempty"`
	ArlingtonCompatible bool            `json:"arlingtonCompatible,omitempty"`
	WatermarkOpacity    float64         `json:"watermarkOpacity,omitempty"`
	Validate            bool            `json:"validate,omitempty"`
}

func (req CompileRequest) decodeMedia() (map[string][]byte, error) {
	out := make(map[string][]byte, len(req.Media))
	for path, encoded := range req.Media {
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("httpapi: decode media %q: %w", path, err)
		}
		out[path] = data
	}
	return out, nil
}

func (req CompileRequest) toNumberingDefinitions() docmodel.NumberingDefinitions {
	if req.Numbering == nil {
		return nil
	}
	out := make(docmodel.NumberingDefinitions, len(req.Numbering))
	for id, levels := range req.Numbering {
		converted := make([]docmodel.NumberingLevel, len(levels))
		for i, l := range levels {
			converted[i] = docmodel.NumberingLevel{Format: l.Format, Text: l.Text, StartAt: l.StartAt, RestartOn: l.RestartOn}
		}
		out[id] = converted
	}
	return out
}
