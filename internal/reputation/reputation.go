package reputation

// PointsPerCharge is awarded for every completed booking.
const PointsPerCharge = 10

type Level struct {
	MinPoints   int    `json:"min_points"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Levels is ordered by ascending MinPoints.
var Levels = []Level{
	{0, "Leerlauf-Azubi", "Noch ist hier nicht viel Saft auf der Leitung. Ab an die Säule mit dir!"},
	{50, "Der Funke springt über", "Es knistert zwischen uns! Du hast die ersten 5 Dates mit der Ladesäule hinter dir."},
	{100, "Stammgast im Saftladen", "Du weißt, wo der beste Strom fließt. Andere gehen in die Bar, du hängst am Kabel."},
	{150, "Kabel-Jongleur", "Du wickelst das Ladekabel mittlerweile schneller auf als ein Cowboy sein Lasso."},
	{200, "Watt geht ab?!", "20 Mal geladen? Watt für eine Leistung! Du kennst dich mit Spannung aus."},
	{250, "Ohm my God!", "Der Widerstand ist zwecklos. Du bist jetzt offiziell süchtig nach Elektronen."},
	{300, "AC/DC Rocker", "Egal ob Wechsel- oder Gleichstrom, du rockst die Ladesäule."},
	{400, "Hüter der Wallbox", "Du hast mehr Zeit an Ladesäulen verbracht als manche Leute im Urlaub."},
	{500, "Super-Charged Survivor", "Halbzeit zur Unsterblichkeit! Dein Auto ist voller als dein Terminkalender."},
	{750, "Lord of the Range", "Ein Ring sie zu knechten? Nein, ein Stecker sie zu laden!"},
	{1000, "Das wandelnde Kraftwerk", "UNFASSBAR! Wenn du den Raum betrittst, gehen die Lichter von alleine an."},
}

type Score struct {
	CompletedCharges int    `json:"completed_charges"`
	Points           int    `json:"points"`
	Level            Level  `json:"level"`
	NextLevel        *Level `json:"next_level,omitempty"`
	PointsToNext     int    `json:"points_to_next"`
}

func Points(completed int) int {
	if completed < 0 {
		return 0
	}
	return completed * PointsPerCharge
}

// LevelFor returns the highest tier reached with points.
func LevelFor(points int) Level {
	for i := len(Levels) - 1; i >= 0; i-- {
		if points >= Levels[i].MinPoints {
			return Levels[i]
		}
	}
	return Levels[0]
}

// NextLevel returns the tier after current, or nil at the top.
func NextLevel(current Level) *Level {
	for i := range Levels {
		if Levels[i].MinPoints == current.MinPoints && i < len(Levels)-1 {
			next := Levels[i+1]
			return &next
		}
	}
	return nil
}

func ScoreFor(completed int) Score {
	points := Points(completed)
	level := LevelFor(points)
	s := Score{
		CompletedCharges: max(completed, 0),
		Points:           points,
		Level:            level,
		NextLevel:        NextLevel(level),
	}
	if s.NextLevel != nil {
		s.PointsToNext = s.NextLevel.MinPoints - points
	}
	return s
}
