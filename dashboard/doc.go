// Package dashboard is the HTTP gateway for the surveillance platform.
//
// Tool services push alerts, scan history, workflow progress, cases and
// risk entities here over plain HTTP; operators and the agent read the
// aggregate state back. The gateway also fans out get_context across
// the services so one call shows every cache at once. Everything under
// /api requires a JWT bearer token or an API key.
package dashboard
