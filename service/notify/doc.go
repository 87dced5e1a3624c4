// Package notify sends surveillance notifications to a chat webhook.
//
// Unlike the other services it keeps no resolution cache: its
// parameters carry no identifiers worth remembering between calls, it
// is pure egress. Delivery failures are reported in the result rather
// than as errors so an agent can see exactly why a message did not
// land.
package notify
