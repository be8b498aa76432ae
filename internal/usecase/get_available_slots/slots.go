package get_available_slots

import (
	"sort"

	"github.com/bookline/booking-service/internal/domain"
	"github.com/bookline/booking-service/pkg/types"
)

// generateCandidates генерирует кандидатов времени начала внутри рабочего окна.
// Кандидаты идут с фиксированным шагом domain.SlotGranularityMinutes от начала
// окна; кандидат отбрасывается, как только конец услуги выходит за конец окна.
// Окно короче длительности услуги дает пустой список - это не ошибка, равно
// как и кандидат, чей конец пересекает полночь: он просто не помещается.
func generateCandidates(window domain.WorkWindow, durationMinutes int) []types.TimeString {
	if !window.Working {
		return []types.TimeString{}
	}

	candidates := make([]types.TimeString, 0)
	current := window.Start

	for current.IsBefore(window.End) {
		end, err := current.AddMinutes(durationMinutes)
		if err != nil || end.IsAfter(window.End) {
			break
		}

		candidates = append(candidates, current)

		current, err = current.AddMinutes(domain.SlotGranularityMinutes)
		if err != nil {
			break
		}
	}

	return candidates
}

// hasOverlap проверяет пересечение кандидата [start, start+duration) с
// блокирующими записями. Интервалы полуоткрытые: запись, заканчивающаяся
// ровно в начале кандидата (или наоборот), пересечением не считается.
func hasOverlap(start types.TimeString, durationMinutes int, appointments []*domain.Appointment) (bool, error) {
	end, err := start.AddMinutes(durationMinutes)
	if err != nil {
		return false, err
	}

	for _, appt := range appointments {
		if !appt.Blocks() {
			continue
		}

		apptEnd, err := appt.EndTime()
		if err != nil {
			// Запись с некорректным интервалом не должна блокировать слот
			continue
		}

		if appt.StartTime.IsBefore(end) && apptEnd.IsAfter(start) {
			return true, nil
		}
	}

	return false, nil
}

// freeCandidates оставляет кандидатов без пересечений с записями сотрудника
func freeCandidates(candidates []types.TimeString, durationMinutes int, appointments []*domain.Appointment) ([]types.TimeString, error) {
	free := make([]types.TimeString, 0, len(candidates))

	for _, start := range candidates {
		overlaps, err := hasOverlap(start, durationMinutes, appointments)
		if err != nil {
			return nil, err
		}
		if !overlaps {
			free = append(free, start)
		}
	}

	return free, nil
}

// mergeSlots собирает объединение слотов всех сотрудников: дедупликация по
// времени начала и сортировка по возрастанию. Результат не говорит, КАКОЙ
// сотрудник свободен - только что свободен хотя бы один.
func mergeSlots(perEmployee [][]types.TimeString, durationMinutes int) []domain.Slot {
	seen := make(map[types.TimeString]struct{})
	starts := make([]types.TimeString, 0)

	for _, slots := range perEmployee {
		for _, start := range slots {
			if _, ok := seen[start]; ok {
				continue
			}
			seen[start] = struct{}{}
			starts = append(starts, start)
		}
	}

	sort.Slice(starts, func(i, j int) bool {
		return starts[i].IsBefore(starts[j])
	})

	result := make([]domain.Slot, len(starts))
	for i, start := range starts {
		result[i] = domain.Slot{
			StartTime:       start,
			DurationMinutes: durationMinutes,
		}
	}

	return result
}
