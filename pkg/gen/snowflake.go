package gen

import (
	"questflow/pkg/config"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

var Module = fx.Module("snowflake",
	fx.Provide(NewNode),
)

// NewNode builds the snowflake node used for all entity IDs. Snowflake IDs are
// time-sortable, which keeps the event log replayable in insertion order.
func NewNode(cfg *config.Config) (*snowflake.Node, error) {
	nodeID := cfg.Snowflake.NodeID
	if nodeID == 0 {
		nodeID = 1
	}
	return snowflake.NewNode(nodeID)
}
