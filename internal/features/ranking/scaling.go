package ranking

import (
	"errors"
	"fmt"
	"math"
)

// Transform — презентационное преобразование истинной позиции.
// Должно быть чистой функцией от Standing; на вход всегда приходит
// истинная позиция.
type Transform interface {
	Apply(s Standing) (Standing, error)
}

// TransformFunc позволяет использовать функцию как Transform.
type TransformFunc func(s Standing) (Standing, error)

func (f TransformFunc) Apply(s Standing) (Standing, error) { return f(s) }

// IdentityTransform отдаёт истинную позицию без изменений.
var IdentityTransform Transform = TransformFunc(func(s Standing) (Standing, error) {
	return s, nil
})

var errInvalidScaling = errors.New("некорректные параметры масштабирования")

// InflatedTransform умножает ранг на factor и считает процентиль против
// виртуальной популяции virtualPopulation. Виртуальная популяция не меньше
// масштабированного ранга.
func InflatedTransform(factor, virtualPopulation int64) Transform {
	return TransformFunc(func(s Standing) (Standing, error) {
		if factor <= 0 || virtualPopulation <= 0 {
			return s, fmt.Errorf("%w: factor=%d population=%d", errInvalidScaling, factor, virtualPopulation)
		}
		if s.Rank <= 0 {
			return s, fmt.Errorf("%w: rank=%d", errInvalidScaling, s.Rank)
		}
		if s.Rank > math.MaxInt64/factor {
			return s, fmt.Errorf("%w: переполнение ранга", errInvalidScaling)
		}

		out := s
		out.Rank = s.Rank * factor
		out.Population = virtualPopulation
		if out.Population < out.Rank {
			out.Population = out.Rank
		}
		out.Percentile = Percentile(out.Rank, out.Population)
		out.Scaled = true
		return out, nil
	})
}
