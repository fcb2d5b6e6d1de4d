// Package slots projects caller-supplied content into component slots.
//
// A component node carries two trees: Children, the content its caller
// wrote between its tags, and Body, the component's own rendered template.
// Projection replaces every <slot name="x"> placeholder in the body with the
// caller content bucketed under "x" (or "default" without a name), then
// clears Children.
//
// Components are projected bottom-up. A placeholder that also carries a slot
// attribute, <slot name="x" slot="y"/>, forwards bucket x to the enclosing
// component under the name y, which is how content bubbles through
// intermediate components. When searching for placeholders, a component
// never descends into nested components' own templates, only into content
// it handed them, so a nested component's slots cannot be stolen.
//
// Content that ends up in no slot is reported as a *SlotsError, which
// unwraps to an E110 error.
package slots
