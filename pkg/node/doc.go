// Package node provides the tree shared by templates, instances and the
// resolved render output.
//
// A single Node type is used for all three roles. Templates are produced
// offline by the scanner and carry only static structure plus identity
// (Tracker and ExprIdx) at every dynamic position. Instances are produced at
// run time by the same source location and additionally carry live payloads.
// After reconciliation and slot projection the same nodes form the resolved
// tree handed to the serializer.
//
// # Core Types
//
// Node is the building block for doctype, comment, text, fragment, block,
// element and component nodes. Attr holds static, key-only, expression and
// spread attributes. Location identifies the macro invocation site that
// produced a tree.
//
// # Builders
//
// Trees are built with variadic factory functions:
//
//	Div(Class("card"),
//	    H1(Text("Title")),
//	    Block("props.count", 3),
//	    Component("Card", "title=\"x\"", body,
//	        P(SlotAttr("header"), Text("Header")),
//	    ),
//	)
//
// # Markers
//
// Markers are bookkeeping flags attached to a node by the pipeline. They are
// copied selectively: CopyInto takes an explicit deny list so template-only
// markers never leak onto instances.
package node
