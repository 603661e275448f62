package editor

// Browser-side scripting convention. Every script is a function body the
// Session evaluates with a single array argument, so caller-supplied text,
// ids, and command names travel as structured arguments instead of being
// spliced into script source.
//
// The remote contract is a global CKEDITOR.instances registry keyed by
// element id, each instance exposing .status, .insertHtml(html),
// .getData() and .execCommand(name, data). Re-targeting a different
// rich-text editor means substituting scripts with the same shape.
const (
	// ScriptInstanceIDs lists registered instance ids in the order the
	// browser reports them.
	ScriptInstanceIDs = `() => Object.keys(window.CKEDITOR ? window.CKEDITOR.instances : {})`

	// ScriptInstanceReady reports whether the instance exists and has
	// finished initializing.
	ScriptInstanceReady = `(args) => {
		const [id] = args;
		const instance = window.CKEDITOR && window.CKEDITOR.instances[id];
		return !!instance && instance.status === "ready";
	}`

	// ScriptInsertHTML replaces the editor content with the given fragment.
	ScriptInsertHTML = `(args) => {
		const [id, html] = args;
		window.CKEDITOR.instances[id].insertHtml(html);
	}`

	// ScriptGetData serializes the editor's current content.
	ScriptGetData = `(args) => {
		const [id] = args;
		return window.CKEDITOR.instances[id].getData();
	}`

	// ScriptExecCommand invokes a named editor command and returns its
	// result for truthiness inspection.
	ScriptExecCommand = `(args) => {
		const [id, name, data] = args;
		return window.CKEDITOR.instances[id].execCommand(name, data === null ? undefined : data);
	}`
)
