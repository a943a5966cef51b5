package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/AzielCF/az-relay/pkg/msgworker"
	"github.com/AzielCF/az-relay/pkg/utils"
)

// GetPoolStats returns real-time statistics of the inbound and delivery
// worker pools.
func (h *Health) GetPoolStats(c *fiber.Ctx) error {
	if len(h.Pools) == 0 {
		return c.Status(fiber.StatusServiceUnavailable).JSON(utils.ResponseData{
			Status:  fiber.StatusServiceUnavailable,
			Code:    "SERVICE_UNAVAILABLE",
			Message: "Worker pools not initialized",
		})
	}

	stats := make([]msgworker.PoolStats, 0, len(h.Pools))
	for _, pool := range h.Pools {
		stats = append(stats, pool.GetStats())
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Worker pool stats retrieved",
		Results: stats,
	})
}
