// Package ticketing hosts the investigation ticketing service.
//
// Confirmed surveillance findings become tracker tickets so that
// investigations leave an audit trail outside the platform. The
// backend is a Jira Cloud REST v3 project reached with basic auth;
// case and entity identifiers in ticket requests accept partial
// values resolved against prior calls.
package ticketing
