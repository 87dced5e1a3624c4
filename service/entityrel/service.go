package entityrel

import (
	"context"
	"errors"
	"fmt"

	"github.com/surveilops/surveilops/refcontext"
)

// ErrEntityNotFound reports a lookup miss after resolution.
var ErrEntityNotFound = errors.New("entityrel: entity not found")

// ErrNoPath reports that no connection exists within the hop budget.
var ErrNoPath = errors.New("entityrel: no connection path found")

// Service answers entity graph questions. Partial identifiers are
// resolved through the cache before querying; resolved values are
// recorded afterwards so later calls can reuse them.
type Service struct {
	graph *GraphClient
	cache *refcontext.Context
}

// NewService builds the service and its resolution cache. The seed
// records cover the demo graph so a cold agent can use loose
// references immediately.
func NewService(graph *GraphClient, hook refcontext.Hook) (*Service, error) {
	cache, err := refcontext.New(refcontext.Config{
		Kinds: []refcontext.Kind{
			refcontext.KindEntityID,
			refcontext.KindCompanySymbol,
		},
		DedupKey: []refcontext.Kind{
			refcontext.KindEntityID,
			refcontext.KindCompanySymbol,
		},
		Seed: []refcontext.Record{
			{
				Method: "get_entity",
				Fields: map[refcontext.Kind]string{
					refcontext.KindEntityID:      "ENT-REL-001",
					refcontext.KindCompanySymbol: "RELIANCE",
				},
				Prompt: "Get Mukesh Ambani entity",
			},
			{
				Method: "get_company_insiders",
				Fields: map[refcontext.Kind]string{
					refcontext.KindCompanySymbol: "INFY",
				},
				Prompt: "Get all Infosys insiders",
			},
			{
				Method: "check_insider_status",
				Fields: map[refcontext.Kind]string{
					refcontext.KindEntityID:      "SUS-001",
					refcontext.KindCompanySymbol: "RELIANCE",
				},
				Prompt: "Is suspect SUS-001 a RELIANCE insider?",
			},
		},
		OnResolve: hook,
	})
	if err != nil {
		return nil, err
	}
	return &Service{graph: graph, cache: cache}, nil
}

// Cache exposes the resolution cache for the get_context tool and
// health reporting.
func (s *Service) Cache() *refcontext.Context { return s.cache }

// GetEntity looks up one entity by (possibly partial) ID.
func (s *Service) GetEntity(ctx context.Context, entityID string) (*Entity, error) {
	resolved := s.cache.Resolve(refcontext.KindEntityID, entityID)

	result, err := s.graph.Query(ctx,
		"MATCH (e:Entity {entity_id: $id}) RETURN e.entity_id, e.entity_type, e.name, e.pan_number, e.registration_id",
		map[string]any{"id": resolved})
	if err != nil {
		return nil, err
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, resolved)
	}

	entity := parseEntity(result.Data[0].Row)
	s.cache.Record("get_entity", map[refcontext.Kind]string{
		refcontext.KindEntityID: entity.EntityID,
	}, fmt.Sprintf("Get entity %s (%s)", entity.EntityID, entity.Name))

	return entity, nil
}

// SearchEntities finds entities whose name or PAN contains the query.
func (s *Service) SearchEntities(ctx context.Context, query string, limit int) ([]Entity, error) {
	if limit <= 0 {
		limit = 10
	}
	result, err := s.graph.Query(ctx,
		"MATCH (e:Entity) WHERE e.name CONTAINS $q OR e.pan_number CONTAINS $q "+
			"RETURN e.entity_id, e.entity_type, e.name, e.pan_number, e.registration_id LIMIT $limit",
		map[string]any{"q": query, "limit": limit})
	if err != nil {
		return nil, err
	}

	entities := make([]Entity, 0, len(result.Data))
	for _, row := range result.Data {
		entities = append(entities, *parseEntity(row.Row))
	}

	if len(entities) > 0 {
		s.cache.Record("search_entities", map[refcontext.Kind]string{
			refcontext.KindEntityID: entities[0].EntityID,
		}, fmt.Sprintf("Search entities matching %q", query))
	}
	return entities, nil
}

// GetRelationships returns all outgoing edges for an entity.
func (s *Service) GetRelationships(ctx context.Context, entityID string) ([]Relationship, error) {
	resolved := s.cache.Resolve(refcontext.KindEntityID, entityID)

	result, err := s.graph.Query(ctx,
		"MATCH (a:Entity {entity_id: $id})-[r]->(b:Entity) "+
			"RETURN a.entity_id, b.entity_id, type(r), r.detail, r.strength, r.verified",
		map[string]any{"id": resolved})
	if err != nil {
		return nil, err
	}

	rels := make([]Relationship, 0, len(result.Data))
	for _, r := range result.Data {
		rels = append(rels, Relationship{
			SourceEntityID:     rowString(r.Row, 0),
			TargetEntityID:     rowString(r.Row, 1),
			RelationshipType:   rowString(r.Row, 2),
			RelationshipDetail: rowString(r.Row, 3),
			Strength:           rowInt(r.Row, 4),
			Verified:           rowBool(r.Row, 5),
		})
	}

	s.cache.Record("get_relationships", map[refcontext.Kind]string{
		refcontext.KindEntityID: resolved,
	}, fmt.Sprintf("Get relationships of %s", resolved))
	return rels, nil
}

// GetConnectedEntities traverses up to maxHops from an entity.
func (s *Service) GetConnectedEntities(ctx context.Context, entityID string, maxHops int) ([]EntityConnection, error) {
	resolved := s.cache.Resolve(refcontext.KindEntityID, entityID)
	if maxHops <= 0 {
		maxHops = 2
	}

	// Variable-length bounds cannot be parameterized in Cypher.
	statement := fmt.Sprintf(
		"MATCH path = (a:Entity {entity_id: $id})-[*1..%d]-(b:Entity) WHERE a <> b "+
			"RETURN DISTINCT b.entity_id, [n IN nodes(path) | n.entity_id] AS path_nodes, "+
			"length(path) AS hops, [r IN relationships(path) | type(r)] AS rel_types LIMIT 50",
		maxHops)

	result, err := s.graph.Query(ctx, statement, map[string]any{"id": resolved})
	if err != nil {
		return nil, err
	}

	conns := make([]EntityConnection, 0, len(result.Data))
	for _, r := range result.Data {
		conns = append(conns, EntityConnection{
			EntityID:          resolved,
			ConnectedEntityID: rowString(r.Row, 0),
			ConnectionPath:    joinPath(rowStrings(r.Row, 1)),
			Hops:              rowInt(r.Row, 2),
			RelationshipTypes: joinTypes(rowStrings(r.Row, 3)),
		})
	}

	s.cache.Record("get_connected_entities", map[refcontext.Kind]string{
		refcontext.KindEntityID: resolved,
	}, fmt.Sprintf("Get entities connected to %s within %d hops", resolved, maxHops))
	return conns, nil
}

// CheckInsiderStatus reports whether an entity is a registered insider
// of a company. Entity and company partials resolve together so both
// identifiers come from the same remembered interaction when possible.
func (s *Service) CheckInsiderStatus(ctx context.Context, entityID, companySymbol string) (*InsiderStatus, error) {
	resolved := s.cache.ResolveMany(map[refcontext.Kind]string{
		refcontext.KindEntityID:      entityID,
		refcontext.KindCompanySymbol: companySymbol,
	})
	entity := resolved[refcontext.KindEntityID]
	company := resolved[refcontext.KindCompanySymbol]

	result, err := s.graph.Query(ctx,
		"MATCH (e:Entity {entity_id: $id})-[r:INSIDER_OF]->(c:Company {symbol: $symbol}) "+
			"RETURN e.entity_id, c.symbol, true, r.insider_type, r.designation, r.window_status",
		map[string]any{"id": entity, "symbol": company})
	if err != nil {
		return nil, err
	}

	s.cache.Record("check_insider_status", map[refcontext.Kind]string{
		refcontext.KindEntityID:      entity,
		refcontext.KindCompanySymbol: company,
	}, fmt.Sprintf("Is %s a %s insider?", entity, company))

	if len(result.Data) == 0 {
		return &InsiderStatus{
			EntityID:      entity,
			CompanySymbol: company,
			WindowStatus:  "N/A",
		}, nil
	}

	row := result.Data[0].Row
	return &InsiderStatus{
		EntityID:      rowString(row, 0),
		CompanySymbol: rowString(row, 1),
		IsInsider:     true,
		InsiderType:   rowString(row, 3),
		Designation:   rowString(row, 4),
		WindowStatus:  defaultString(rowString(row, 5), "OPEN"),
	}, nil
}

// GetCompanyInsiders lists every registered insider of a company.
func (s *Service) GetCompanyInsiders(ctx context.Context, companySymbol string) ([]InsiderStatus, error) {
	company := s.cache.Resolve(refcontext.KindCompanySymbol, companySymbol)

	result, err := s.graph.Query(ctx,
		"MATCH (e:Entity)-[r:INSIDER_OF]->(c:Company {symbol: $symbol}) "+
			"RETURN e.entity_id, c.symbol, true, r.insider_type, r.designation, r.window_status",
		map[string]any{"symbol": company})
	if err != nil {
		return nil, err
	}

	insiders := make([]InsiderStatus, 0, len(result.Data))
	for _, r := range result.Data {
		insiders = append(insiders, InsiderStatus{
			EntityID:      rowString(r.Row, 0),
			CompanySymbol: rowString(r.Row, 1),
			IsInsider:     true,
			InsiderType:   rowString(r.Row, 3),
			Designation:   rowString(r.Row, 4),
			WindowStatus:  defaultString(rowString(r.Row, 5), "OPEN"),
		})
	}

	s.cache.Record("get_company_insiders", map[refcontext.Kind]string{
		refcontext.KindCompanySymbol: company,
	}, fmt.Sprintf("Get all %s insiders", company))
	return insiders, nil
}

// AreEntitiesConnected finds the shortest path between two entities.
func (s *Service) AreEntitiesConnected(ctx context.Context, entityID1, entityID2 string, maxHops int) (*EntityConnection, error) {
	first := s.cache.Resolve(refcontext.KindEntityID, entityID1)
	second := s.cache.Resolve(refcontext.KindEntityID, entityID2)
	if maxHops <= 0 {
		maxHops = 4
	}

	statement := fmt.Sprintf(
		"MATCH path = shortestPath((a:Entity {entity_id: $a})-[*1..%d]-(b:Entity {entity_id: $b})) "+
			"RETURN [n IN nodes(path) | n.entity_id] AS path_nodes, length(path) AS hops, "+
			"[r IN relationships(path) | type(r)] AS rel_types",
		maxHops)

	result, err := s.graph.Query(ctx, statement, map[string]any{"a": first, "b": second})
	if err != nil {
		return nil, err
	}

	s.cache.Record("are_entities_connected", map[refcontext.Kind]string{
		refcontext.KindEntityID: first,
	}, fmt.Sprintf("Are %s and %s connected?", first, second))

	if len(result.Data) == 0 {
		return nil, fmt.Errorf("%w: %s to %s within %d hops", ErrNoPath, first, second, maxHops)
	}

	row := result.Data[0].Row
	return &EntityConnection{
		EntityID:          first,
		ConnectedEntityID: second,
		ConnectionPath:    joinPath(rowStrings(row, 0)),
		Hops:              rowInt(row, 1),
		RelationshipTypes: joinTypes(rowStrings(row, 2)),
	}, nil
}

// GetFamilyMembers returns entities linked by FAMILY edges.
func (s *Service) GetFamilyMembers(ctx context.Context, entityID string) ([]Entity, error) {
	resolved := s.cache.Resolve(refcontext.KindEntityID, entityID)

	result, err := s.graph.Query(ctx,
		"MATCH (a:Entity {entity_id: $id})-[:FAMILY]-(b:Entity) "+
			"RETURN b.entity_id, b.entity_type, b.name, b.pan_number, b.registration_id",
		map[string]any{"id": resolved})
	if err != nil {
		return nil, err
	}

	members := make([]Entity, 0, len(result.Data))
	for _, r := range result.Data {
		members = append(members, *parseEntity(r.Row))
	}

	s.cache.Record("get_family_members", map[refcontext.Kind]string{
		refcontext.KindEntityID: resolved,
	}, fmt.Sprintf("Get family members of %s", resolved))
	return members, nil
}

func parseEntity(row []any) *Entity {
	return &Entity{
		EntityID:       rowString(row, 0),
		EntityType:     rowString(row, 1),
		Name:           rowString(row, 2),
		PANNumber:      rowString(row, 3),
		RegistrationID: rowString(row, 4),
	}
}

func joinPath(nodes []string) string {
	out := ""
	for i, n := range nodes {
		if i > 0 {
			out += " -> "
		}
		out += n
	}
	return out
}

func joinTypes(types []string) string {
	out := ""
	for i, t := range types {
		if i > 0 {
			out += ","
		}
		out += t
	}
	return out
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
