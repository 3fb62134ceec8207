package biography

const deepSeekPrompt = `You are a professional biographer. Synthesize these personal memories into a flowing biographical narrative.

MEMORIES TO SYNTHESIZE:
%s

INSTRUCTIONS:
1. Write in third person past tense (e.g., "Jon was born...")
2. Create a magazine-style narrative with smooth transitions between events
3. Organize chronologically by decade or life phase
4. Preserve ALL factual details - names, dates, places, events
5. Add context where helpful but never invent facts
6. Write in a warm, engaging style suitable for family reading
7. Use chapter breaks for major life phases
8. Total length: 2000-3000 words

FORMAT:
# Chapter 1: [Decade/Phase Name]

[Narrative text...]

# Chapter 2: [Next Phase]

[Narrative text...]

Begin the biography now:`

const claudePrompt = `You are a professional biographer synthesizing personal memories into a compelling narrative.

MEMORIES TO SYNTHESIZE:
%s

TASK:
Create a flowing biographical narrative suitable for a family memoir or magazine feature.

REQUIREMENTS:
1. Write in third person past tense
2. Organize chronologically, creating natural chapter breaks by life phase or decade
3. Preserve all factual details exactly - names, dates, places, specific events
4. Add contextual transitions and connections between events
5. Never invent facts not present in the source memories
6. Write in a warm, accessible style - not academic or clinical
7. Include vivid details from the original memories (they matter!)
8. Aim for 2000-3000 words total

STRUCTURE:
Use markdown with # for chapter headings. Each chapter should flow naturally.

Begin writing the biography now:`
