package mdstream

import "golang.org/x/net/html/atom"

// TagID identifies a known HTML tag. It is resolved once per tag during
// tokenization and used as an index into depth maps and dispatch tables.
type TagID uint8

// Known tags. TagUnknown covers custom elements and anything not listed.
const (
	TagUnknown TagID = iota
	TagA
	TagAbbr
	TagAddress
	TagArea
	TagArticle
	TagAside
	TagAudio
	TagB
	TagBase
	TagBdi
	TagBdo
	TagBlockquote
	TagBody
	TagBr
	TagButton
	TagCanvas
	TagCaption
	TagCenter
	TagCite
	TagCode
	TagCol
	TagColgroup
	TagData
	TagDatalist
	TagDd
	TagDel
	TagDetails
	TagDfn
	TagDialog
	TagDiv
	TagDl
	TagDt
	TagEm
	TagEmbed
	TagFieldset
	TagFigcaption
	TagFigure
	TagFont
	TagFooter
	TagForm
	TagH1
	TagH2
	TagH3
	TagH4
	TagH5
	TagH6
	TagHead
	TagHeader
	TagHgroup
	TagHr
	TagHTML
	TagI
	TagIframe
	TagImg
	TagInput
	TagIns
	TagKbd
	TagLabel
	TagLegend
	TagLi
	TagLink
	TagMain
	TagMap
	TagMark
	TagMenu
	TagMeta
	TagMeter
	TagNav
	TagNoscript
	TagObject
	TagOl
	TagOptgroup
	TagOption
	TagOutput
	TagP
	TagParam
	TagPicture
	TagPre
	TagProgress
	TagQ
	TagRp
	TagRt
	TagRuby
	TagS
	TagSamp
	TagScript
	TagSearch
	TagSection
	TagSelect
	TagSlot
	TagSmall
	TagSource
	TagSpan
	TagStrike
	TagStrong
	TagStyle
	TagSub
	TagSummary
	TagSup
	TagSvg
	TagTable
	TagTbody
	TagTd
	TagTemplate
	TagTextarea
	TagTfoot
	TagTh
	TagThead
	TagTime
	TagTitle
	TagTr
	TagTrack
	TagU
	TagUl
	TagVar
	TagVideo
	TagWbr

	// TagCount is the number of tag identities, including TagUnknown.
	TagCount
)

var tagNames = [TagCount]string{
	TagUnknown:    "",
	TagA:          "a",
	TagAbbr:       "abbr",
	TagAddress:    "address",
	TagArea:       "area",
	TagArticle:    "article",
	TagAside:      "aside",
	TagAudio:      "audio",
	TagB:          "b",
	TagBase:       "base",
	TagBdi:        "bdi",
	TagBdo:        "bdo",
	TagBlockquote: "blockquote",
	TagBody:       "body",
	TagBr:         "br",
	TagButton:     "button",
	TagCanvas:     "canvas",
	TagCaption:    "caption",
	TagCenter:     "center",
	TagCite:       "cite",
	TagCode:       "code",
	TagCol:        "col",
	TagColgroup:   "colgroup",
	TagData:       "data",
	TagDatalist:   "datalist",
	TagDd:         "dd",
	TagDel:        "del",
	TagDetails:    "details",
	TagDfn:        "dfn",
	TagDialog:     "dialog",
	TagDiv:        "div",
	TagDl:         "dl",
	TagDt:         "dt",
	TagEm:         "em",
	TagEmbed:      "embed",
	TagFieldset:   "fieldset",
	TagFigcaption: "figcaption",
	TagFigure:     "figure",
	TagFont:       "font",
	TagFooter:     "footer",
	TagForm:       "form",
	TagH1:         "h1",
	TagH2:         "h2",
	TagH3:         "h3",
	TagH4:         "h4",
	TagH5:         "h5",
	TagH6:         "h6",
	TagHead:       "head",
	TagHeader:     "header",
	TagHgroup:     "hgroup",
	TagHr:         "hr",
	TagHTML:       "html",
	TagI:          "i",
	TagIframe:     "iframe",
	TagImg:        "img",
	TagInput:      "input",
	TagIns:        "ins",
	TagKbd:        "kbd",
	TagLabel:      "label",
	TagLegend:     "legend",
	TagLi:         "li",
	TagLink:       "link",
	TagMain:       "main",
	TagMap:        "map",
	TagMark:       "mark",
	TagMenu:       "menu",
	TagMeta:       "meta",
	TagMeter:      "meter",
	TagNav:        "nav",
	TagNoscript:   "noscript",
	TagObject:     "object",
	TagOl:         "ol",
	TagOptgroup:   "optgroup",
	TagOption:     "option",
	TagOutput:     "output",
	TagP:          "p",
	TagParam:      "param",
	TagPicture:    "picture",
	TagPre:        "pre",
	TagProgress:   "progress",
	TagQ:          "q",
	TagRp:         "rp",
	TagRt:         "rt",
	TagRuby:       "ruby",
	TagS:          "s",
	TagSamp:       "samp",
	TagScript:     "script",
	TagSearch:     "search",
	TagSection:    "section",
	TagSelect:     "select",
	TagSlot:       "slot",
	TagSmall:      "small",
	TagSource:     "source",
	TagSpan:       "span",
	TagStrike:     "strike",
	TagStrong:     "strong",
	TagStyle:      "style",
	TagSub:        "sub",
	TagSummary:    "summary",
	TagSup:        "sup",
	TagSvg:        "svg",
	TagTable:      "table",
	TagTbody:      "tbody",
	TagTd:         "td",
	TagTemplate:   "template",
	TagTextarea:   "textarea",
	TagTfoot:      "tfoot",
	TagTh:         "th",
	TagThead:      "thead",
	TagTime:       "time",
	TagTitle:      "title",
	TagTr:         "tr",
	TagTrack:      "track",
	TagU:          "u",
	TagUl:         "ul",
	TagVar:        "var",
	TagVideo:      "video",
	TagWbr:        "wbr",
}

type tagFlag uint8

const (
	flagVoid tagFlag = 1 << iota
	flagInline
	flagBlock
)

var (
	tagsByAtom = make(map[atom.Atom]TagID, TagCount)
	// tagsByName holds the few known tags that have no atom.
	tagsByName = make(map[string]TagID)
	tagFlags   [TagCount]tagFlag
)

func init() {
	for id, name := range tagNames {
		if name == "" {
			continue
		}
		if a := atom.Lookup([]byte(name)); a != 0 {
			tagsByAtom[a] = TagID(id)
		} else {
			tagsByName[name] = TagID(id)
		}
	}
	for _, t := range []TagID{
		TagArea, TagBase, TagBr, TagCol, TagEmbed, TagHr, TagImg, TagInput,
		TagLink, TagMeta, TagParam, TagSource, TagTrack, TagWbr,
	} {
		tagFlags[t] |= flagVoid
	}
	for _, t := range InlineTags {
		tagFlags[t] |= flagInline
	}
	for _, t := range []TagID{
		TagAddress, TagArticle, TagAside, TagBlockquote, TagBody, TagCaption,
		TagCenter, TagDd, TagDetails, TagDialog, TagDiv, TagDl, TagDt,
		TagFieldset, TagFigcaption, TagFigure, TagFooter, TagForm, TagH1,
		TagH2, TagH3, TagH4, TagH5, TagH6, TagHeader, TagHgroup, TagHr,
		TagHTML, TagLegend, TagLi, TagMain, TagMenu, TagNav, TagOl, TagP,
		TagPre, TagSearch, TagSection, TagSummary, TagTable, TagUl,
	} {
		tagFlags[t] |= flagBlock
	}
}

// InlineTags lists the tags rendered as phrasing content.
var InlineTags = []TagID{
	TagA, TagAbbr, TagB, TagBdi, TagBdo, TagBr, TagCite, TagCode, TagData,
	TagDel, TagDfn, TagEm, TagFont, TagI, TagImg, TagInput, TagIns, TagKbd,
	TagLabel, TagMark, TagMeter, TagOutput, TagProgress, TagQ, TagS,
	TagSamp, TagSmall, TagSpan, TagStrike, TagStrong, TagSub, TagSup,
	TagTime, TagU, TagVar, TagWbr,
}

// LookupTag returns the TagID for a lower-case tag name, or TagUnknown.
func LookupTag(name string) TagID {
	if a := atom.Lookup([]byte(name)); a != 0 {
		return tagsByAtom[a]
	}
	return tagsByName[name]
}

// TagFromAtom returns the TagID for an atom, or TagUnknown.
func TagFromAtom(a atom.Atom) TagID {
	return tagsByAtom[a]
}

// String returns the lower-case tag name.
func (t TagID) String() string {
	if t >= TagCount {
		return ""
	}
	return tagNames[t]
}

// IsVoid reports whether the tag never has content or a closing tag.
func (t TagID) IsVoid() bool { return t < TagCount && tagFlags[t]&flagVoid != 0 }

// IsInline reports whether the tag is phrasing content.
func (t TagID) IsInline() bool { return t < TagCount && tagFlags[t]&flagInline != 0 }

// IsBlock reports whether the tag starts a block of its own.
func (t TagID) IsBlock() bool { return t < TagCount && tagFlags[t]&flagBlock != 0 }

// HeadingLevel returns 1-6 for h1-h6 and 0 for any other tag.
func (t TagID) HeadingLevel() int {
	if t >= TagH1 && t <= TagH6 {
		return int(t-TagH1) + 1
	}
	return 0
}
