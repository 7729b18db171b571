package models

// Description is the static catalog entry for one forecasting family:
// the model equation, what the method does, when to use it, its known
// limitations, and the meaning of its hyperparameters. Entries are defined
// once at package level and never mutated.
type Description struct {
	Equation    string `json:"equation"`
	Description string `json:"description"`
	BestFor     string `json:"best_for"`
	Limitations string `json:"limitations"`
	Parameters  string `json:"parameters"`
}

// Display names of the six forecasting families. These are the registry keys
// and the family identifiers reported in results and forecast requests.
const (
	FamilySMA         = "Media Móvil Simple (SMA)"
	FamilySES         = "Suavizado Exponencial Simple (SES)"
	FamilyHoltWinters = "Holt-Winters (Triple Exponencial)"
	FamilyARIMA       = "ARIMA (AutoRegressive Integrated Moving Average)"
	FamilyLinear      = "Regresión Lineal"
	FamilyForest      = "Random Forest"
)

var descriptions = map[string]Description{
	FamilySMA: {
		Equation:    "ŷ_t = (y_{t-1} + y_{t-2} + ... + y_{t-n}) / n",
		Description: "Promedia los últimos n valores para predecir el siguiente.",
		BestFor:     "Series con tendencia suave y sin estacionalidad fuerte.",
		Limitations: "No captura tendencias o estacionalidad. Retraso en los puntos de cambio.",
		Parameters:  "n (ventana de promedio)",
	},
	FamilySES: {
		Equation:    "ŷ_t = α * y_{t-1} + (1-α) * ŷ_{t-1}",
		Description: "Asigna pesos exponencialmente decrecientes a observaciones pasadas.",
		BestFor:     "Series sin tendencia o estacionalidad clara.",
		Limitations: "No adecuado para datos con tendencia o estacionalidad.",
		Parameters:  "α (factor de suavizado, 0-1)",
	},
	FamilyHoltWinters: {
		Equation:    "Nivel: l_t = α(y_t - s_{t-m}) + (1-α)(l_{t-1} + b_{t-1})\nTendencia: b_t = β(l_t - l_{t-1}) + (1-β)b_{t-1}\nEstacionalidad: s_t = γ(y_t - l_{t-1} - b_{t-1}) + (1-γ)s_{t-m}",
		Description: "Modela nivel, tendencia y estacionalidad con tres ecuaciones de suavizado.",
		BestFor:     "Series con tendencia y estacionalidad claras.",
		Limitations: "Sensible a la elección de parámetros. Requiere múltiples ciclos estacionales.",
		Parameters:  "α, β, γ (factores de suavizado), m (períodos estacionales)",
	},
	FamilyARIMA: {
		Equation:    "y′_t = c + φ₁y′_{t-1} + ... + φₚy′_{t-𝑝} + θ₁ε_{t-1} + ... + θ𝑞ε_{t-𝑞} + ε_t",
		Description: "Combina componentes autoregresivos (AR), diferenciación (I) y media móvil (MA).",
		BestFor:     "Series estacionarias o que pueden hacerse estacionarias mediante diferenciación.",
		Limitations: "Complejidad en la selección de parámetros (p,d,q).",
		Parameters:  "p (orden AR), d (grado de diferenciación), q (orden MA)",
	},
	FamilyLinear: {
		Equation:    "y = β₀ + β₁x₁ + β₂x₂ + ... + βₚxₚ + ε",
		Description: "Modela la relación lineal entre variables independientes y la variable dependiente.",
		BestFor:     "Cuando existe una relación lineal clara entre el tiempo y la demanda.",
		Limitations: "Asume linealidad. No captura relaciones no lineales o estacionalidad compleja.",
		Parameters:  "Coeficientes β para cada variable predictora",
	},
	FamilyForest: {
		Equation:    "ŷ = (1/K) * Σ_{k=1}^K f_k(x)",
		Description: "Ensemble de árboles de decisión que promedian múltiples predicciones.",
		BestFor:     "Relaciones complejas no lineales entre características y objetivo.",
		Limitations: "Puede sobreajustar sin tuning adecuado. Menos interpretable.",
		Parameters:  "n_estimators (número de árboles), max_depth (profundidad máxima)",
	},
}

// describe returns the catalog entry for a family, zero-valued when the
// family is unknown.
func describe(family string) Description {
	return descriptions[family]
}
