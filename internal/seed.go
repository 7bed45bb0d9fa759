package internal

import "time"

// DefaultModelID is the default model of a fresh install
const DefaultModelID = "llama-3-8b"

// Device describes the host. It is static; there is no hardware probing.
var Device = DeviceInfo{
	RAM:            "16 GB",
	VRAM:           "6 GB",
	Recommendation: "You can run up to 7B–14B quantized models comfortably",
}

// DefaultSettings returns the settings of a fresh install
func DefaultSettings() Settings {
	return Settings{
		Theme:            "light",
		Language:         "en",
		DefaultModel:     DefaultModelID,
		MaxRAMUsage:      75,
		PreferSmaller:    true,
		GPUAcceleration:  true,
		StorageUsed:      "8.3 GB",
		StorageAvailable: "245 GB",
		AnonymousStats:   false,
	}
}

// SeedModels returns the built-in model catalog
func SeedModels() []Model {
	return []Model{
		{
			ID:            "llama-3-8b",
			Name:          "Llama 3 8B Instruct Q4_0",
			Source:        "Hugging Face",
			Tags:          []string{"Chat", "Fast", "Recommended"},
			DownloadSize:  "4.2 GB",
			RAMNeeded:     "6 GB",
			Compatibility: CompatibilityGreat,
			Installed:     true,
			Type:          ModelTypeChat,
			Size:          ModelSizeMedium,
		},
		{
			ID:            "gemma-7b",
			Name:          "Gemma 7B Instruct Q4_K_M",
			Source:        "Hugging Face",
			Tags:          []string{"Chat", "High quality"},
			DownloadSize:  "3.8 GB",
			RAMNeeded:     "5 GB",
			Compatibility: CompatibilityGreat,
			Type:          ModelTypeChat,
			Size:          ModelSizeMedium,
		},
		{
			ID:            "codellama-13b",
			Name:          "Code Llama 13B Q4_0",
			Source:        "Hugging Face",
			Tags:          []string{"Coding", "Specialized"},
			DownloadSize:  "7.3 GB",
			RAMNeeded:     "10 GB",
			Compatibility: CompatibilityGood,
			Type:          ModelTypeCoding,
			Size:          ModelSizeLarge,
		},
		{
			ID:            "mistral-7b",
			Name:          "Mistral 7B Instruct v0.2",
			Source:        "Hugging Face",
			Tags:          []string{"Chat", "Fast", "Efficient"},
			DownloadSize:  "4.1 GB",
			RAMNeeded:     "6 GB",
			Compatibility: CompatibilityGreat,
			Installed:     true,
			Type:          ModelTypeChat,
			Size:          ModelSizeMedium,
		},
		{
			ID:            "phi-3-mini",
			Name:          "Phi-3 Mini 4K Instruct",
			Source:        "Hugging Face",
			Tags:          []string{"Chat", "Fast", "Compact"},
			DownloadSize:  "2.3 GB",
			RAMNeeded:     "4 GB",
			Compatibility: CompatibilityGreat,
			Type:          ModelTypeChat,
			Size:          ModelSizeSmall,
		},
		{
			ID:            "llama-70b",
			Name:          "Llama 3 70B Instruct Q4_0",
			Source:        "Hugging Face",
			Tags:          []string{"Chat", "High quality", "Large"},
			DownloadSize:  "39 GB",
			RAMNeeded:     "48 GB",
			Compatibility: CompatibilityHeavy,
			Type:          ModelTypeChat,
			Size:          ModelSizeLarge,
		},
	}
}

// SeedChats returns the example conversations, timestamped relative to now
func SeedChats(now time.Time) []Chat {
	ago := func(d time.Duration) time.Time { return now.Add(-d) }

	return []Chat{
		{
			ID:        "chat-1",
			Title:     "Python async best practices",
			Timestamp: ago(30 * time.Minute),
			Messages: []Message{
				{
					ID:        "msg-1",
					Role:      RoleUser,
					Content:   "What are the best practices for using async/await in Python?",
					Timestamp: ago(30 * time.Minute),
				},
				{
					ID:   "msg-2",
					Role: RoleAssistant,
					Content: "Here are the key best practices for using async/await in Python:\n\n" +
						"1. **Use `asyncio.run()` for entry points**\n" +
						"   ```python\n   import asyncio\n   \n   async def main():\n       await some_async_function()\n   \n   asyncio.run(main())\n   ```\n\n" +
						"2. **Avoid blocking operations** - Use async versions of I/O operations\n\n" +
						"3. **Use `asyncio.gather()` for concurrent tasks**\n" +
						"   ```python\n   results = await asyncio.gather(\n       task1(),\n       task2(),\n       task3()\n   )\n   ```\n\n" +
						"4. **Handle exceptions properly** with try/except blocks\n\n" +
						"5. **Use async context managers** when available (`async with`)\n\n" +
						"These practices will help you write efficient asynchronous Python code!",
					Timestamp: ago(29 * time.Minute),
				},
			},
		},
		{
			ID:        "chat-2",
			Title:     "Explain quantum computing",
			Timestamp: ago(2 * time.Hour),
			Messages: []Message{
				{
					ID:        "msg-3",
					Role:      RoleUser,
					Content:   "Can you explain quantum computing in simple terms?",
					Timestamp: ago(2 * time.Hour),
				},
				{
					ID:   "msg-4",
					Role: RoleAssistant,
					Content: "Quantum computing uses the principles of quantum mechanics to process information. Here's a simple explanation:\n\n" +
						"**Classical vs Quantum**\n" +
						"- Classical computers use bits (0 or 1)\n" +
						"- Quantum computers use qubits (can be 0, 1, or both simultaneously)\n\n" +
						"**Key Concepts:**\n" +
						"1. **Superposition** - Qubits can exist in multiple states at once\n" +
						"2. **Entanglement** - Qubits can be correlated in ways impossible for classical bits\n" +
						"3. **Interference** - Quantum states can amplify correct answers and cancel wrong ones\n\n" +
						"**Why it matters:**\n" +
						"Quantum computers can solve certain problems exponentially faster than classical computers, particularly in:\n" +
						"- Cryptography\n- Drug discovery\n- Optimization problems\n- Machine learning\n\n" +
						"Think of it like trying every path through a maze simultaneously, rather than one at a time!",
					Timestamp: ago(2*time.Hour - 45*time.Second),
				},
			},
		},
		{
			ID:        "chat-3",
			Title:     "Recipe for chocolate cake",
			Timestamp: ago(24 * time.Hour),
			Messages: []Message{
				{
					ID:        "msg-5",
					Role:      RoleUser,
					Content:   "Give me a simple chocolate cake recipe",
					Timestamp: ago(24 * time.Hour),
				},
				{
					ID:   "msg-6",
					Role: RoleAssistant,
					Content: "Here's a delicious and simple chocolate cake recipe:\n\n" +
						"**Ingredients:**\n" +
						"- 1¾ cups all-purpose flour\n- 2 cups sugar\n- ¾ cup cocoa powder\n- 2 tsp baking soda\n" +
						"- 1 tsp baking powder\n- 1 tsp salt\n- 2 eggs\n- 1 cup strong coffee (cooled)\n" +
						"- 1 cup milk\n- ½ cup vegetable oil\n- 1 tsp vanilla extract\n\n" +
						"**Instructions:**\n" +
						"1. Preheat oven to 350°F (175°C)\n" +
						"2. Mix all dry ingredients in a large bowl\n" +
						"3. Add eggs, coffee, milk, oil, and vanilla\n" +
						"4. Beat for 2 minutes until smooth\n" +
						"5. Pour into greased 9x13 pan\n" +
						"6. Bake for 30-35 minutes\n" +
						"7. Let cool before frosting\n\n" +
						"Enjoy your homemade chocolate cake!",
					Timestamp: ago(24*time.Hour - time.Minute),
				},
			},
		},
	}
}

// SeedState is the state of a fresh install
func SeedState(now time.Time) State {
	return State{
		Chats:        SeedChats(now),
		Models:       SeedModels(),
		CurrentModel: DefaultModelID,
		Settings:     DefaultSettings(),
	}
}
