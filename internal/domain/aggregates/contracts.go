package aggregates

import "fmt"

// WriteTxOwnership says who opens the transaction around an aggregate write.
type WriteTxOwnership string

const (
	WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"
	WriteTxOwnedByCaller    WriteTxOwnership = "caller_owned"
)

// ReadPolicy limits which reads an aggregate performs.
type ReadPolicy string

// ReadPolicyInvariantScoped: only the rows needed to decide the write. Listing and
// reporting stay on the table repos.
const ReadPolicyInvariantScoped ReadPolicy = "invariant_scoped_reads"

// Contract describes how an aggregate writes and what it owns.
type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	ReadPolicy       ReadPolicy
	Notes            string
}

type Aggregate interface {
	Contract() Contract
}

func (c Contract) RequiresAggregateOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}

// Validate rejects contracts the write path cannot honor: every write opens its own
// transaction.
func (c Contract) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("aggregate contract has no name")
	}
	if !c.RequiresAggregateOwnedTx() {
		return fmt.Errorf("aggregate %s: write tx ownership %q is not supported", c.Name, c.WriteTxOwnership)
	}
	if c.ReadPolicy != ReadPolicyInvariantScoped {
		return fmt.Errorf("aggregate %s: read policy %q is not supported", c.Name, c.ReadPolicy)
	}
	return nil
}

// CheckContracts validates each aggregate's contract and rejects duplicate names.
func CheckContracts(aggs ...Aggregate) error {
	seen := make(map[string]bool, len(aggs))
	for _, a := range aggs {
		c := a.Contract()
		if err := c.Validate(); err != nil {
			return err
		}
		if seen[c.Name] {
			return fmt.Errorf("aggregate contract %s registered twice", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}
