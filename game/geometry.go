package game

import (
	"math"
	"math/rand"
)

// Clamp 将 v 限制在 [lo, hi]；区间为空（实体比地图还大）时取中点
func Clamp(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Distance 两点欧氏距离
func Distance(ax, ay, bx, by float64) float64 {
	return math.Hypot(ax-bx, ay-by)
}

// ClampPosition 按实体尺寸裁剪到 [size/2, dim-size/2]
func (c Config) ClampPosition(x, y, size float64) (float64, float64) {
	half := size / 2
	return Clamp(x, half, c.MapWidth-half), Clamp(y, half, c.MapHeight-half)
}

// InBounds 判断位置是否满足边界约束
func (c Config) InBounds(x, y, size float64) bool {
	cx, cy := c.ClampPosition(x, y, size)
	return cx == x && cy == y
}

// Speed 随尺寸对数衰减的移动速度，永不为零
func (c Config) Speed(size float64) float64 {
	return c.PlayerSpeedFactor / (1 + math.Log1p(size/c.InitialPlayerSize))
}

// direction 将客户端意图归一化；长度不超过 1 视为静止（死区）
func direction(dx, dy float64) (float64, float64) {
	m := math.Hypot(dx, dy)
	if m > 1 {
		return dx / m, dy / m
	}
	return 0, 0
}

// uniform 在 [margin, dim-margin] 中均匀取值
func uniform(rng *rand.Rand, margin, dim float64) float64 {
	return margin + rng.Float64()*(dim-2*margin)
}
