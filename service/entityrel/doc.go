// Package entityrel hosts the entity relationship graph service.
//
// Entities (people, companies, brokers) and their relationships live in
// a Neo4j graph reached over the transactional Cypher HTTP endpoint.
// The service answers insider and connectivity questions for the
// surveillance agent and keeps a reference-resolution cache so partial
// identifiers like "REL" or "SUS" resolve against prior calls.
package entityrel
