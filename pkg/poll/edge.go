package poll

import "sync"

// EdgeDetector сигналит только о росте наблюдаемого значения.
// Первое наблюдение задаёт базу и никогда не считается ростом,
// иначе перезапуск клиента оповещал бы обо всей накопленной истории.
type EdgeDetector struct {
	baseline int
	primed   bool
}

// Observe принимает очередное значение и сообщает, был ли рост.
// Равные и убывающие значения тревогу не поднимают, но убывание
// опускает базу, чтобы следующий рост был замечен.
func (d *EdgeDetector) Observe(v int) bool {
	if !d.primed {
		d.primed = true
		d.baseline = v
		return false
	}
	grew := v > d.baseline
	d.baseline = v
	return grew
}

// EdgeDetectorSet держит независимый детектор на каждый именованный поток.
type EdgeDetectorSet struct {
	mu        sync.Mutex
	detectors map[string]*EdgeDetector
}

func NewEdgeDetectorSet() *EdgeDetectorSet {
	return &EdgeDetectorSet{detectors: make(map[string]*EdgeDetector)}
}

// Observe направляет значение детектору потока key, создавая его при
// первом обращении.
func (s *EdgeDetectorSet) Observe(key string, v int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.detectors[key]
	if !ok {
		d = &EdgeDetector{}
		s.detectors[key] = d
	}
	return d.Observe(v)
}

// Forget сбрасывает детектор потока key.
func (s *EdgeDetectorSet) Forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.detectors, key)
}
