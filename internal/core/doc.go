// Package core holds the workflow modules' shared machinery: the module
// registry, the request and response envelopes, the execution service and
// the error taxonomy.
//
// # Module Registry
//
// Each module registers itself at init time using [Register]. A
// [ModuleDefinition] names the module, lists the content objects its
// /content endpoint can populate and provides the /execute operation:
//
//	core.Register(core.ModuleDefinition{
//	    Info:    core.ModuleInfo{Key: "google_sheets_reader", Label: "Read rows"},
//	    Content: contentFor(contentSheetNames, contentRowOptions),
//	    Execute: readRows,
//	})
//
// Module functions receive their dependencies through [Env] at call time,
// so the registry itself holds no remote clients.
//
// # Form References
//
// Dropdown fields arrive either as plain strings or as option objects
// ({"id","label","value"}). [Ref] accepts both and resolves to one string.
//
// # Error Handling
//
// Every error is classified by [KindOf] and mapped to a support code by
// [MapError]. The web layer turns the kind into an HTTP status and puts
// the verbatim error text in the response so the caller can self-correct:
//
//   - REQ001-REQ004: missing or invalid parameters, timeouts, cancellations
//   - COL001-COL002, ROW001-ROW002, SHEET001: sheet shape problems
//   - API001, AUTH001, NET001-NET002: Google Sheets and credential failures
package core
