// Package markup loads descriptor trees from tree files.
//
// A tree file is CUE (.cue) or YAML (.yaml, .yml) with a top-level "tree"
// field. Both formats are compiled to a CUE value, so errors carry source
// positions either way. Each node has exactly one of tag, text or component:
//
//	tree: {
//		tag: "div"
//		props: {id: "app", style: {color: "red"}}
//		children: [
//			"Hello, ",
//			{component: "Counter", props: {start: 1}},
//			{tag: "button", on: {click: "reset"}, children: ["reset"]},
//		]
//	}
//
// Plain strings in children are text nodes. Component and handler names are
// resolved through a Registry. Float values are rejected; use ints.
package markup
