package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/gioimport/internal/gio"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// GroupSpec carries what every location of one run shares.
type GroupSpec struct {
	Name          string
	StartDate     time.Time
	RegulationID  int64
	AuthorityCode string
}

// GroupResult describes the group location an aggregation produced.
type GroupResult struct {
	GroupID int64
	Class   gioimport.GeometryClass

	// Members are the member location ids in document order.
	Members []int64

	Inserted int // members written by this run
	Reused   int // members whose geometry already existed
}

// Aggregator turns extracted locations into member rows and one group location.
type Aggregator struct {
	geometries *Geometries
	locations  *Locations
	logger     gioimport.Logger
}

// NewAggregator returns an Aggregator. Panics on nil dependencies.
func NewAggregator(geometries *Geometries, locations *Locations, logger gioimport.Logger) *Aggregator {
	if geometries == nil {
		panic("geometries cannot be nil")
	}
	if locations == nil {
		panic("locations cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Aggregator{geometries: geometries, locations: locations, logger: logger}
}

// Aggregate resolves every fragment in order, inserting a geometry and leaf
// location when its source id is new and reusing the stored rows otherwise.
// The group takes the class of the first member; members of another class
// are reported but accepted. Reporting them costs one extra class lookup per
// member after all members are resolved. Any failure aborts the aggregation.
func (a *Aggregator) Aggregate(ctx context.Context, fragments []gio.Location, spec GroupSpec) (GroupResult, error) {
	var result GroupResult
	if len(fragments) == 0 {
		return result, fmt.Errorf("%w: no locations to aggregate", gioimport.ErrMalformedInput)
	}

	result.Members = make([]int64, 0, len(fragments))
	for i, frag := range fragments {
		a.logger.Info("Processing location '%s' (%d/%d)", frag.Name, i+1, len(fragments))

		id, inserted, err := a.resolve(ctx, frag, spec)
		if err != nil {
			return result, fmt.Errorf("location %q: %w", frag.Name, err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Reused++
		}
		result.Members = append(result.Members, id)
	}

	class, err := a.groupClass(ctx, result.Members)
	if err != nil {
		return result, err
	}
	result.Class = class

	result.GroupID, err = a.locations.CreateGroup(ctx, GroupLocation{
		Name:          spec.Name,
		StartDate:     spec.StartDate,
		RegulationID:  spec.RegulationID,
		Class:         class,
		AuthorityCode: spec.AuthorityCode,
	})
	if err != nil {
		return result, err
	}
	a.logger.Verbose("Created group location %d (%s)", result.GroupID, class)

	for _, member := range result.Members {
		if err := a.locations.Link(ctx, result.GroupID, member); err != nil {
			return result, fmt.Errorf("member %d: %w", member, err)
		}
	}
	return result, nil
}

func (a *Aggregator) resolve(ctx context.Context, frag gio.Location, spec GroupSpec) (id int64, inserted bool, err error) {
	exists, err := a.geometries.Exists(ctx, frag.SourceID)
	if err != nil {
		return 0, false, err
	}

	if exists {
		geometryID, err := a.geometries.LookupExisting(ctx, frag.SourceID)
		if err != nil {
			return 0, false, err
		}
		id, err := a.locations.LookupByGeometry(ctx, geometryID)
		if err != nil {
			return 0, false, err
		}
		a.logger.Verbose("Reusing geometry %d and location %d for %s", geometryID, id, frag.SourceID)
		return id, false, nil
	}

	geometryID, class, err := a.geometries.Insert(ctx, frag.SourceID, frag.Name, frag.Geometry)
	if err != nil {
		return 0, false, err
	}
	id, err = a.locations.CreateLeaf(ctx, LeafLocation{
		Name:          frag.Name,
		StartDate:     spec.StartDate,
		RegulationID:  spec.RegulationID,
		Class:         class,
		GeometryID:    geometryID,
		AuthorityCode: spec.AuthorityCode,
	})
	if err != nil {
		return 0, false, err
	}
	a.logger.Verbose("Inserted geometry %d (%s) and location %d for %s", geometryID, class, id, frag.SourceID)
	return id, true, nil
}

// groupClass reads the stored class of every member. The first one wins.
func (a *Aggregator) groupClass(ctx context.Context, members []int64) (gioimport.GeometryClass, error) {
	var first gioimport.GeometryClass
	for i, member := range members {
		class, err := a.locations.GeometryClassOf(ctx, member)
		if err != nil {
			return "", err
		}
		if i == 0 {
			first = class
			continue
		}
		if class != first {
			a.logger.Warn("Location %d has geometry class %s; group uses %s from its first member", member, class, first)
		}
	}
	return first, nil
}
