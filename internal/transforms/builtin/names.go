package builtin

// Transform names. They are part of the configuration surface
// (transforms.disabled) and of the timing report.
const (
	NameExternalLinks   = "external_links"
	NameHeadingAnchors  = "heading_anchors"
	NameTableWrapper    = "table_wrapper"
	NameCodePreview     = "code_preview"
	NameSyntaxHighlight = "syntax_highlight"
	NameCopyButton      = "copy_button"
)

// Marker classes and attributes shared between transforms.
const (
	languagePrefix = "language-"
	previewSuffix  = "-preview"
	attrLang       = "data-lang"
)
