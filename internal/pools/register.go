/*

Built-in pool type registrations. Callers that embed the engine register the
stock curves once at startup and add custom types alongside them.

*/

package pools

import "github.com/ammlabs/vse/internal/vault"

// Pool type tags understood out of the box.
const (
	PoolTypeWeighted = "WEIGHTED"
	PoolTypeStable   = "STABLE"
)

// Register binds the built-in pool types to an engine.
func Register(e *vault.Engine) {
	e.RegisterPoolType(PoolTypeWeighted, NewWeightedPool)
	e.RegisterPoolType(PoolTypeStable, NewStablePool)
}
