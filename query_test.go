package depot

import (
	"testing"
)

// TestQueryFiltering tests filter trees applied on top of a view's required keys
func TestQueryFiltering(t *testing.T) {
	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()
	healthComp := FactoryNewComponent[Health]()

	type entitySetup struct {
		components []Component
		count      int
	}

	tests := []struct {
		name            string
		entitySetups    []entitySetup
		queryType       string // "and", "or", "not", "complex"
		queryComponents []Component
		expectedMatches int
	}{
		{
			name: "And query matches exact",
			entitySetups: []entitySetup{
				{[]Component{posComp, velComp}, 5},
				{[]Component{posComp}, 10},
				{[]Component{velComp}, 15},
			},
			queryType:       "and",
			queryComponents: []Component{posComp, velComp},
			expectedMatches: 5,
		},
		{
			name: "Or query matches either",
			entitySetups: []entitySetup{
				{[]Component{posComp, velComp}, 5},
				{[]Component{posComp}, 10},
				{[]Component{velComp}, 15},
			},
			queryType:       "or",
			queryComponents: []Component{posComp, velComp},
			expectedMatches: 30, // 5 + 10 + 15
		},
		{
			name: "Not query excludes",
			entitySetups: []entitySetup{
				{[]Component{posComp, velComp}, 5},
				{[]Component{posComp}, 10},
				{[]Component{velComp}, 15},
				{[]Component{healthComp}, 20},
			},
			queryType:       "not",
			queryComponents: []Component{velComp},
			expectedMatches: 30, // 10 + 20
		},
		{
			name: "Complex query",
			entitySetups: []entitySetup{
				{[]Component{posComp, velComp, healthComp}, 5},
				{[]Component{posComp, velComp}, 10},
				{[]Component{posComp, healthComp}, 15},
				{[]Component{velComp, healthComp}, 20},
				{[]Component{posComp}, 25},
				{[]Component{velComp}, 30},
				{[]Component{healthComp}, 35},
			},
			queryType:       "complex",
			queryComponents: []Component{posComp, velComp, healthComp},
			expectedMatches: 30, // (P AND V) OR (P AND H) = 10 + 15 + 5 (counted once)
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := newTestStorage(t, 16)

			for _, setup := range tt.entitySetups {
				archetype, err := storage.NewOrExistingArchetype(setup.components...)
				if err != nil {
					t.Fatalf("Failed to create archetype: %v", err)
				}
				if _, err := storage.NewEntities(setup.count, archetype); err != nil {
					t.Fatalf("Failed to create entities: %v", err)
				}
			}

			query := Factory.NewQuery()
			var queryNode QueryNode

			interfaceComponents := make([]interface{}, len(tt.queryComponents))
			for i, comp := range tt.queryComponents {
				interfaceComponents[i] = comp
			}

			switch tt.queryType {
			case "and":
				queryNode = query.And(interfaceComponents...)
			case "or":
				queryNode = query.Or(interfaceComponents...)
			case "not":
				queryNode = query.Not(interfaceComponents...)
			case "complex":
				// (Position AND Velocity) OR (Position AND Health)
				andQuery1 := query.And(posComp, velComp)
				andQuery2 := query.And(posComp, healthComp)
				queryNode = query.Or(andQuery1, andQuery2)
			}

			view, err := storage.BuildFilteredView(queryNode)
			if err != nil {
				t.Fatalf("BuildFilteredView() error = %v", err)
			}
			if view.Len() != tt.expectedMatches {
				t.Errorf("Query matched %d entities, want %d", view.Len(), tt.expectedMatches)
			}
		})
	}
}

func TestFilteredViewCombinesWithKeys(t *testing.T) {
	storage := newTestStorage(t, 16)
	posComp := FactoryNewComponent[Position]()
	velComp := FactoryNewComponent[Velocity]()
	healthComp := FactoryNewComponent[Health]()

	posVel, _ := storage.NewOrExistingArchetype(posComp, velComp)
	posVelHealth, _ := storage.NewOrExistingArchetype(posComp, velComp, healthComp)
	storage.NewEntities(4, posVel)
	storage.NewEntities(6, posVelHealth)

	without := Factory.NewQuery().Not(healthComp)
	view, err := storage.BuildFilteredView(without, posComp.Key(), velComp.Key())
	if err != nil {
		t.Fatalf("BuildFilteredView() error = %v", err)
	}
	if view.Len() != 4 {
		t.Errorf("Len() = %d, want 4", view.Len())
	}

	leaf := NewLeafNode(healthComp.Key())
	if leaf.Evaluate(posVel, storage) || !leaf.Evaluate(posVelHealth, storage) {
		t.Errorf("leaf node evaluation wrong")
	}
	if NewLeafNode("unregistered").Evaluate(posVelHealth, storage) {
		t.Errorf("leaf node with unregistered key should never match")
	}
	if Factory.NewQuery().Evaluate(posVel, storage) {
		t.Errorf("empty query should not match")
	}
	q := Factory.NewQuery()
	q.And([]TypeKey{posComp.Key(), healthComp.Key()})
	if q.Evaluate(posVel, storage) || !q.Evaluate(posVelHealth, storage) {
		t.Errorf("query root evaluation wrong")
	}
}
