// Package attr defines the tree attribute model and its bounded random walk.
//
// A tree is described by five numeric attributes in a fixed order:
//
//   - [Length]: trunk length in surface units
//   - [Divergence]: angle in degrees between a branch and its parent
//   - [Reduction]: factor applied to length and width per generation
//   - [LineWidth]: trunk stroke width
//   - [Branchings]: number of branch generations drawn after the trunk
//
// A [Table] holds one [Spec] per attribute. A [Mutator] walks [Values]
// one attribute at a time, so a spawned tree drifts gradually from its
// parent instead of being resampled.
//
// # Example
//
//	m := attr.NewMutator(attr.DefaultTable(), rand.New(rand.NewSource(1)))
//	root := m.Initialize(nil)
//	child := m.Initialize(&root)
//	fmt.Println(attr.Diff(root, child)) // at most one name
//
// # Thread Safety
//
// A Mutator wraps a *rand.Rand and is NOT safe for concurrent use.
package attr
